package db

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSetLecture(t *testing.T) {
	c := qt.New(t)
	c.Cleanup(func() { c.Assert(testDB.Reset(), qt.IsNil) })

	t.Run("InputValidation", func(_ *testing.T) {
		c.Assert(testDB.Reset(), qt.IsNil)

		_, err := testDB.SetLecture(&Lecture{CourseID: primitive.NewObjectID()})
		c.Assert(err, qt.Equals, ErrInvalidData)
		_, err = testDB.SetLecture(&Lecture{Title: "Orphan"})
		c.Assert(err, qt.Equals, ErrInvalidData)

		// the parent course must exist
		_, err = testDB.SetLecture(&Lecture{
			CourseID: primitive.NewObjectID(),
			Title:    "Orphan",
		})
		c.Assert(err, qt.Equals, ErrNotFound)
	})

	t.Run("CreateKeepsCourseInSync", func(_ *testing.T) {
		c.Assert(testDB.Reset(), qt.IsNil)

		creatorID := createTestInstructor(c)
		course := createTestCourse(c, creatorID)

		lectureID, err := testDB.SetLecture(&Lecture{
			CourseID: course.ID,
			Title:    "Introduction",
			VideoURL: "https://cdn.example.com/intro.mp4",
		})
		c.Assert(err, qt.IsNil)

		lecture, err := testDB.Lecture(lectureID)
		c.Assert(err, qt.IsNil)
		c.Assert(lecture.Title, qt.Equals, "Introduction")
		c.Assert(lecture.IsPreviewFree, qt.IsFalse)

		// the lecture reference is stored in the course document
		updatedCourse, err := testDB.Course(course.ID.Hex())
		c.Assert(err, qt.IsNil)
		c.Assert(updatedCourse.LectureIDs, qt.HasLen, 1)
		c.Assert(updatedCourse.LectureIDs[0], qt.Equals, lecture.ID)

		// updating the same lecture doesn't duplicate the reference
		lecture.Title = "Introduction (revised)"
		_, err = testDB.SetLecture(lecture)
		c.Assert(err, qt.IsNil)
		updatedCourse, err = testDB.Course(course.ID.Hex())
		c.Assert(err, qt.IsNil)
		c.Assert(updatedCourse.LectureIDs, qt.HasLen, 1)
	})
}

func TestLecturesByCourse(t *testing.T) {
	c := qt.New(t)
	c.Cleanup(func() { c.Assert(testDB.Reset(), qt.IsNil) })
	c.Assert(testDB.Reset(), qt.IsNil)

	creatorID := createTestInstructor(c)
	course := createTestCourse(c, creatorID)
	for _, title := range []string{"Introduction", "Setting up", "First steps"} {
		_, err := testDB.SetLecture(&Lecture{CourseID: course.ID, Title: title})
		c.Assert(err, qt.IsNil)
	}

	lectures, err := testDB.LecturesByCourse(course.ID.Hex())
	c.Assert(err, qt.IsNil)
	c.Assert(lectures, qt.HasLen, 3)

	lectures, err = testDB.LecturesByCourse(primitive.NewObjectID().Hex())
	c.Assert(err, qt.IsNil)
	c.Assert(lectures, qt.HasLen, 0)
}

func TestDelLecture(t *testing.T) {
	c := qt.New(t)
	c.Cleanup(func() { c.Assert(testDB.Reset(), qt.IsNil) })
	c.Assert(testDB.Reset(), qt.IsNil)

	creatorID := createTestInstructor(c)
	course := createTestCourse(c, creatorID)
	lectureID, err := testDB.SetLecture(&Lecture{CourseID: course.ID, Title: "Introduction"})
	c.Assert(err, qt.IsNil)

	c.Assert(testDB.DelLecture(lectureID), qt.IsNil)
	_, err = testDB.Lecture(lectureID)
	c.Assert(err, qt.Equals, ErrNotFound)

	// the reference is pulled from the course document too
	updatedCourse, err := testDB.Course(course.ID.Hex())
	c.Assert(err, qt.IsNil)
	c.Assert(updatedCourse.LectureIDs, qt.HasLen, 0)
}
