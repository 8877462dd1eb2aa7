package room

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const roomIDWords = 4

var animals = []string{
	"kitten", "puppy", "bunny", "panda", "koala", "fox", "otter", "hedgehog", "squirrel", "hamster",
	"chick", "duckling", "fawn", "foal", "lamb", "calf", "porcupine", "raccoon", "badger", "mole",
	"lemur", "alpaca", "ferret", "weasel", "beaver", "seahorse", "starfish", "dolphin", "whale", "narwhal",
	"penguin", "flamingo", "pelican", "swallow", "sparrow", "robin", "toucan", "parrot", "canary", "puffin",
}

var dishes = []string{
	"pancake", "waffle", "sushi", "ramen", "curry", "taco", "burrito", "biryani", "paella", "risotto",
	"lasagna", "pizza", "bagel", "salad", "soup", "stew", "dumpling", "noodle", "omelette", "quiche",
	"pretzel", "kebab", "shawarma", "fondue", "pierogi", "gnocchi", "falafel", "samosa", "poutine", "crepe",
}

var names = []string{
	"alice", "bob", "charlie", "daisy", "ella", "finn", "grace", "henry", "isla", "jack",
	"kai", "luna", "mia", "noah", "olivia", "peter", "quinn", "rachel", "sam", "tina",
	"uma", "victor", "winnie", "xavier", "yara", "zoe", "aaron", "bella", "carlos", "diana",
}

var trinkets = []string{
	"sunbeam", "stardust", "pepper", "muffin", "bubble", "sprout", "glimmer", "whisker", "echo", "jelly",
	"marble", "maple", "cocoa", "hazel", "breeze", "meadow", "willow", "ember", "kite", "cinnamon",
	"poppy", "lucky", "pixel", "biscuit", "cupcake", "nugget", "crumb", "toffee", "sprinkle", "twig",
}

var adjectives = []string{
	"tiny", "happy", "sleepy", "fluffy", "sparkly", "cheery", "silly", "jolly", "cozy", "shiny",
	"golden", "silver", "crimson", "emerald", "purple", "blue", "red", "green", "bright", "gentle",
	"brave", "calm", "swift", "silent", "noisy", "bouncy", "fuzzy", "plucky", "merry", "peppy",
}

var wonders = []string{
	"dragon", "unicorn", "griffin", "phoenix", "fairy", "gnome", "sprite", "pixie", "mermaid", "elf",
	"goblin", "wizard", "castle", "harbor", "violin", "compass", "glacier", "orchard", "thimble", "button",
	"lantern", "puddle", "pebble", "cottage", "rocket", "comet", "orbit", "nebula", "canyon", "ridge",
}

var wordLists = [][]string{animals, dishes, names, trinkets, adjectives, wonders}

// NewRoomID returns a random, memorable room identifier such as
// "luna-cozy-ramen-comet". Each word comes from a different list and the
// lists are picked in random order.
func NewRoomID() (string, error) {
	order := make([]int, len(wordLists))
	for i := range order {
		order[i] = i
	}

	words := make([]string, 0, roomIDWords)
	for i := 0; i < roomIDWords; i++ {
		j, err := randomIndex(len(order) - i)
		if err != nil {
			return "", fmt.Errorf("generate room id: %w", err)
		}
		order[i], order[i+j] = order[i+j], order[i]

		list := wordLists[order[i]]
		k, err := randomIndex(len(list))
		if err != nil {
			return "", fmt.Errorf("generate room id: %w", err)
		}
		words = append(words, list[k])
	}
	return strings.Join(words, "-"), nil
}

func randomIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
