package internal

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestValidEmail(t *testing.T) {
	c := qt.New(t)
	c.Assert(ValidEmail("student@example.com"), qt.IsTrue)
	c.Assert(ValidEmail("with.dots+tag@sub.example.co"), qt.IsTrue)
	c.Assert(ValidEmail("no-at-sign"), qt.IsFalse)
	c.Assert(ValidEmail("missing@tld"), qt.IsFalse)
}

func TestHexHashPassword(t *testing.T) {
	c := qt.New(t)
	h1 := HexHashPassword("salt", "password")
	h2 := HexHashPassword("salt", "password")
	c.Assert(h1, qt.Equals, h2)
	c.Assert(HexHashPassword("other", "password"), qt.Not(qt.Equals), h1)
}

func TestSanitizeAndVerifyPhoneNumber(t *testing.T) {
	c := qt.New(t)
	got, err := SanitizeAndVerifyPhoneNumber("9876543210")
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "+919876543210")

	_, err = SanitizeAndVerifyPhoneNumber("12")
	c.Assert(err, qt.IsNotNil)
}
