package domain

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Participant is the display name of a poll member. Names are compared
// verbatim: no trimming, no case folding.
type Participant string

// PollState is the current weekly poll: for every option, the participants
// in the order they joined. Values are never mutated after construction;
// Toggle and Reset hand out new states.
type PollState struct {
	entries map[Option][]Participant
}

// Reset returns a fresh poll with every option present and empty.
func Reset() *PollState {
	s := &PollState{entries: make(map[Option][]Participant, len(options))}
	for _, o := range options {
		s.entries[o] = []Participant{}
	}
	return s
}

// NewPollState builds a state from raw entries, rejecting unknown options and
// duplicate participants. Options missing from entries stay missing and read
// as empty.
func NewPollState(entries map[Option][]Participant) (*PollState, error) {
	s := &PollState{entries: make(map[Option][]Participant, len(entries))}
	for o, participants := range entries {
		if !o.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOption, o)
		}
		seen := make(map[Participant]struct{}, len(participants))
		for _, p := range participants {
			if _, dup := seen[p]; dup {
				return nil, fmt.Errorf("%w: %q in %s", ErrDuplicateMember, p, o)
			}
			seen[p] = struct{}{}
		}
		s.entries[o] = slices.Clone(participants)
		if s.entries[o] == nil {
			s.entries[o] = []Participant{}
		}
	}
	return s, nil
}

// Toggle flips the membership of p in option: members are removed, everyone
// else is appended. Applying the same toggle twice yields the original
// membership. The input state is left untouched.
func Toggle(state *PollState, option Option, p Participant) (*PollState, error) {
	if !option.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOption, option)
	}
	if state == nil {
		return nil, ErrNoActivePoll
	}

	next := state.Clone()
	current := next.entries[option]
	if i := slices.Index(current, p); i >= 0 {
		next.entries[option] = slices.Delete(current, i, i+1)
	} else {
		next.entries[option] = append(current, p)
	}
	return next, nil
}

// Clone returns a deep copy. A nil state clones to nil.
func (s *PollState) Clone() *PollState {
	if s == nil {
		return nil
	}
	c := &PollState{entries: make(map[Option][]Participant, len(s.entries))}
	for o, participants := range s.entries {
		c.entries[o] = slices.Clone(participants)
		if c.entries[o] == nil {
			c.entries[o] = []Participant{}
		}
	}
	return c
}

// Participants returns a copy of the members of option in join order.
// A missing option reads as empty.
func (s *PollState) Participants(option Option) []Participant {
	return slices.Clone(s.entries[option])
}

// Joined reports whether p is a member of option.
func (s *PollState) Joined(option Option, p Participant) bool {
	return slices.Contains(s.entries[option], p)
}

// Count returns the number of members of option.
func (s *PollState) Count(option Option) int {
	return len(s.entries[option])
}

// Has reports whether option has an entry, even an empty one.
func (s *PollState) Has(option Option) bool {
	_, ok := s.entries[option]
	return ok
}

// Len returns the number of option entries present.
func (s *PollState) Len() int {
	return len(s.entries)
}

// Equal compares membership per option. Join order is ignored and a missing
// option equals an empty one.
func (s *PollState) Equal(other *PollState) bool {
	if s == nil || other == nil {
		return s == other
	}
	for _, o := range options {
		a, b := s.entries[o], other.entries[o]
		if len(a) != len(b) {
			return false
		}
		for _, p := range a {
			if !slices.Contains(b, p) {
				return false
			}
		}
	}
	return true
}

// MarshalJSON encodes the state as {"mon": ["Alice"], ...}.
func (s *PollState) MarshalJSON() ([]byte, error) {
	doc := make(map[Option][]Participant, len(s.entries))
	for o, participants := range s.entries {
		doc[o] = participants
		if doc[o] == nil {
			doc[o] = []Participant{}
		}
	}
	return json.Marshal(doc)
}

// UnmarshalJSON rejects null and {}: a stored poll always carries its
// options.
func (s *PollState) UnmarshalJSON(data []byte) error {
	var doc map[Option][]Participant
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if len(doc) == 0 {
		return fmt.Errorf("%w: poll document has no options", ErrPersistence)
	}
	parsed, err := NewPollState(doc)
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}
