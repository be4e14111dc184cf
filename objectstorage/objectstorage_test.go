package objectstorage

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestCalculateObjectID(t *testing.T) {
	c := qt.New(t)

	id1, err := calculateObjectID([]byte("thumbnail bytes"))
	c.Assert(err, qt.IsNil)
	c.Assert(id1.IsZero(), qt.IsFalse)

	// same content, same ID
	id2, err := calculateObjectID([]byte("thumbnail bytes"))
	c.Assert(err, qt.IsNil)
	c.Assert(id2, qt.Equals, id1)

	// different content, different ID
	id3, err := calculateObjectID([]byte("other bytes"))
	c.Assert(err, qt.IsNil)
	c.Assert(id3, qt.Not(qt.Equals), id1)
}

func TestObjectIDFromName(t *testing.T) {
	c := qt.New(t)

	id, err := calculateObjectID([]byte("thumbnail bytes"))
	c.Assert(err, qt.IsNil)

	parsed, ok := objectIDfromName(id.Hex() + ".png")
	c.Assert(ok, qt.IsTrue)
	c.Assert(parsed, qt.Equals, id)

	for _, name := range []string{
		"",
		"noextension",
		"bad-chars!.png",
		id.Hex() + ".gif",
		"deadbeef.png", // too short to be an object ID
	} {
		_, ok := objectIDfromName(name)
		c.Assert(ok, qt.IsFalse, qt.Commentf("name %q", name))
	}
}
