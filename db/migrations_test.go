package db

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/skilldeck/lms-backend/migrations"
)

func TestRunMigrations(t *testing.T) {
	c := qt.New(t)
	c.Cleanup(func() { c.Assert(testDB.Reset(), qt.IsNil) })
	c.Assert(testDB.Reset(), qt.IsNil)

	ctx := context.Background()

	// Reset already ran the migrations, the registry version must match the
	// last applied one
	migs := migrations.SortedByVersionAsc()
	c.Assert(len(migs) > 0, qt.IsTrue)
	last, err := lastAppliedMigration(ctx, testDB.migrations)
	c.Assert(err, qt.IsNil)
	c.Assert(last, qt.Equals, migs[len(migs)-1].Version)

	// running them again is a no-op
	c.Assert(testDB.RunMigrationsUp(), qt.IsNil)
	lastAgain, err := lastAppliedMigration(ctx, testDB.migrations)
	c.Assert(err, qt.IsNil)
	c.Assert(lastAgain, qt.Equals, last)

	// roll back one step and re-apply
	c.Assert(testDB.RunMigrationsDown(1), qt.IsNil)
	afterDown, err := lastAppliedMigration(ctx, testDB.migrations)
	c.Assert(err, qt.IsNil)
	c.Assert(afterDown, qt.Equals, last-1)

	c.Assert(testDB.RunMigrationsUp(), qt.IsNil)
	afterUp, err := lastAppliedMigration(ctx, testDB.migrations)
	c.Assert(err, qt.IsNil)
	c.Assert(afterUp, qt.Equals, last)
}
