package states

import (
	"errors"
	"fmt"
	"iter"
)

// Field names one of the six independent state scalars.
type Field uint8

const (
	Awareness Field = iota
	Creativity
	Curiosity
	Gratitude
	Connection
	Insight

	numFields
)

var fieldNames = [numFields]string{
	Awareness:  "awareness",
	Creativity: "creativity",
	Curiosity:  "curiosity",
	Gratitude:  "gratitude",
	Connection: "connection",
	Insight:    "insight",
}

var ErrUnknownField = errors.New("unknown field")

func (f Field) String() string {
	if f >= numFields {
		return fmt.Sprintf("Field(%d)", uint8(f))
	}
	return fieldNames[f]
}

func (f Field) Valid() bool {
	return f < numFields
}

func ParseField(name string) (Field, error) {
	for i, n := range fieldNames {
		if n == name {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Fields yields all fields in declaration order.
func Fields() iter.Seq[Field] {
	return func(yield func(Field) bool) {
		for f := range numFields {
			if !yield(f) {
				return
			}
		}
	}
}

func FieldNames() []string {
	return append([]string(nil), fieldNames[:]...)
}
