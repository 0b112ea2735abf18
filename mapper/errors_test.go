package mapper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorList_Add(t *testing.T) {
	t.Run("should ignore nil errors", func(t *testing.T) {
		var l ErrorList
		l.Add(nil)
		assert.True(t, l.Empty())
	})

	t.Run("should append a conversion error as-is", func(t *testing.T) {
		var l ErrorList
		l.Add(Errorf(ErrWrongType, "expected number"))

		require.Equal(t, 1, l.Len())
		assert.Equal(t, ErrWrongType, l.Errors()[0].Kind)
	})

	t.Run("should flatten a grouped ConversionError", func(t *testing.T) {
		var l ErrorList
		l.Add(&ConversionError{Errs: []*Error{
			Errorf(ErrWrongType, "a"),
			Errorf(ErrAccess, "b"),
		}})

		assert.Equal(t, 2, l.Len())
	})

	t.Run("should wrap foreign errors preserving the cause", func(t *testing.T) {
		cause := errors.New("boom")
		var l ErrorList
		l.Add(cause)

		require.Equal(t, 1, l.Len())
		e := l.Errors()[0]
		assert.Equal(t, ErrUnparseable, e.Kind)
		assert.ErrorIs(t, e, cause)
	})
}

func TestErrorList_Merge(t *testing.T) {
	var a, b ErrorList
	a.Add(Errorf(ErrWrongType, "first"))
	b.Add(Errorf(ErrNotMapped, "second"))
	a.AddAll(&b)

	require.Equal(t, 2, a.Len())
	assert.Equal(t, ErrWrongType, a.Errors()[0].Kind)
	assert.Equal(t, ErrNotMapped, a.Errors()[1].Kind)
}

func TestErrorList_Err(t *testing.T) {
	t.Run("should return nil for an empty list", func(t *testing.T) {
		var l ErrorList
		assert.NoError(t, l.Err())
	})

	t.Run("should group the accumulated errors", func(t *testing.T) {
		var l ErrorList
		l.Add(Errorf(ErrWrongType, "a"))
		l.Add(Errorf(ErrAccess, "b"))

		var cerr *ConversionError
		require.ErrorAs(t, l.Err(), &cerr)
		assert.Len(t, cerr.Errs, 2)
	})
}
