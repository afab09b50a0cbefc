package board

import "fmt"

var registry = map[string]*Descriptor{}

// Register adds a variant's static descriptor to the registry under its
// tag. Variant packages call this from an init() func, the same
// self-registration idiom the teacher uses for its mapper constructors
// via createMapper's switch table, generalized to a map so new variants
// never require editing this package.
func Register(d *Descriptor) {
	if d.Tag == "" {
		panic("board: Register called with empty Tag")
	}
	if _, exists := registry[d.Tag]; exists {
		panic("board: duplicate Register for tag " + d.Tag)
	}
	registry[d.Tag] = d
}

// Lookup returns the descriptor registered under tag, or an error
// matching spec.md §7's "Invalid descriptor" case ("a ROM requests a
// board tag that has no registered variant").
func Lookup(tag string) (*Descriptor, error) {
	d, ok := registry[tag]
	if !ok {
		return nil, fmt.Errorf("board: unsupported board tag %q", tag)
	}
	return d, nil
}

// Tags returns every registered board tag, for use by inspection tools.
func Tags() []string {
	out := make([]string, 0, len(registry))
	for tag := range registry {
		out = append(out, tag)
	}
	return out
}
