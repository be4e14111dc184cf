package db

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// createTestInstructor inserts an instructor account and returns its ID.
func createTestInstructor(c *qt.C) primitive.ObjectID {
	userID, err := testDB.SetUser(&User{
		Email:    "instructor@example.com",
		Password: testUserPass,
		Name:     "Test Instructor",
		Role:     InstructorRole,
	})
	c.Assert(err, qt.IsNil)
	objID, err := primitive.ObjectIDFromHex(userID)
	c.Assert(err, qt.IsNil)
	return objID
}

// createTestCourse inserts a course owned by the given instructor and returns it.
func createTestCourse(c *qt.C, creatorID primitive.ObjectID) *Course {
	course := &Course{
		Title:     testCourseTitle,
		Subtitle:  "From zero to production",
		Category:  "programming",
		Level:     BeginnerLevel,
		Price:     testCoursePrice,
		CreatorID: creatorID,
		Published: true,
	}
	courseID, err := testDB.SetCourse(course)
	c.Assert(err, qt.IsNil)
	c.Assert(courseID, qt.Equals, course.ID.Hex())
	return course
}

func TestSetCourse(t *testing.T) {
	c := qt.New(t)
	c.Cleanup(func() { c.Assert(testDB.Reset(), qt.IsNil) })

	t.Run("InputValidation", func(_ *testing.T) {
		c.Assert(testDB.Reset(), qt.IsNil)

		// title and creator are required
		_, err := testDB.SetCourse(&Course{CreatorID: primitive.NewObjectID()})
		c.Assert(err, qt.Equals, ErrInvalidData)
		_, err = testDB.SetCourse(&Course{Title: testCourseTitle})
		c.Assert(err, qt.Equals, ErrInvalidData)

		_, err = testDB.Course("not-an-object-id")
		c.Assert(err, qt.Equals, ErrInvalidData)
		_, err = testDB.Course(primitive.NewObjectID().Hex())
		c.Assert(err, qt.Equals, ErrNotFound)
	})

	t.Run("CreateAndUpdate", func(_ *testing.T) {
		c.Assert(testDB.Reset(), qt.IsNil)

		creatorID := createTestInstructor(c)
		course := createTestCourse(c, creatorID)

		fetched, err := testDB.Course(course.ID.Hex())
		c.Assert(err, qt.IsNil)
		c.Assert(fetched.Title, qt.Equals, testCourseTitle)
		c.Assert(fetched.Price, qt.Equals, testCoursePrice)
		c.Assert(fetched.Published, qt.IsTrue)

		// unpublish, the published flag is always written even when false
		fetched.Published = false
		_, err = testDB.SetCourse(fetched)
		c.Assert(err, qt.IsNil)
		updated, err := testDB.Course(course.ID.Hex())
		c.Assert(err, qt.IsNil)
		c.Assert(updated.Published, qt.IsFalse)
	})

	t.Run("PublishedCourses", func(_ *testing.T) {
		c.Assert(testDB.Reset(), qt.IsNil)

		creatorID := createTestInstructor(c)
		createTestCourse(c, creatorID)
		_, err := testDB.SetCourse(&Course{
			Title:     "Unpublished draft",
			Category:  "programming",
			CreatorID: creatorID,
		})
		c.Assert(err, qt.IsNil)

		published, err := testDB.PublishedCourses()
		c.Assert(err, qt.IsNil)
		c.Assert(published, qt.HasLen, 1)
		c.Assert(published[0].Title, qt.Equals, testCourseTitle)
	})
}

func TestCourseWithDetails(t *testing.T) {
	c := qt.New(t)
	c.Cleanup(func() { c.Assert(testDB.Reset(), qt.IsNil) })
	c.Assert(testDB.Reset(), qt.IsNil)

	creatorID := createTestInstructor(c)
	course := createTestCourse(c, creatorID)

	// attach two lectures to the course
	_, err := testDB.SetLecture(&Lecture{
		CourseID: course.ID,
		Title:    "Introduction",
		VideoURL: "https://cdn.example.com/intro.mp4",
	})
	c.Assert(err, qt.IsNil)
	_, err = testDB.SetLecture(&Lecture{
		CourseID: course.ID,
		Title:    "Setting up",
		VideoURL: "https://cdn.example.com/setup.mp4",
	})
	c.Assert(err, qt.IsNil)

	detail, err := testDB.CourseWithDetails(course.ID.Hex())
	c.Assert(err, qt.IsNil)
	c.Assert(detail.Title, qt.Equals, testCourseTitle)
	c.Assert(detail.Lectures, qt.HasLen, 2)
	c.Assert(detail.Creator, qt.Not(qt.IsNil))
	c.Assert(detail.Creator.Name, qt.Equals, "Test Instructor")
	// the creator password hash is never exposed
	c.Assert(detail.Creator.Password, qt.Equals, "")

	// unknown course
	_, err = testDB.CourseWithDetails(primitive.NewObjectID().Hex())
	c.Assert(err, qt.Equals, ErrNotFound)
}

func TestDelCourse(t *testing.T) {
	c := qt.New(t)
	c.Cleanup(func() { c.Assert(testDB.Reset(), qt.IsNil) })
	c.Assert(testDB.Reset(), qt.IsNil)

	creatorID := createTestInstructor(c)
	course := createTestCourse(c, creatorID)
	lectureID, err := testDB.SetLecture(&Lecture{
		CourseID: course.ID,
		Title:    "Introduction",
	})
	c.Assert(err, qt.IsNil)

	c.Assert(testDB.DelCourse(course.ID.Hex()), qt.IsNil)
	_, err = testDB.Course(course.ID.Hex())
	c.Assert(err, qt.Equals, ErrNotFound)
	// the course lectures are removed too
	_, err = testDB.Lecture(lectureID)
	c.Assert(err, qt.Equals, ErrNotFound)
}
