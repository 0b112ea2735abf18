package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderStatus int

const (
	statusOpen orderStatus = iota
	statusPaid
	statusCancelled
)

var allStatuses = []orderStatus{statusOpen, statusPaid, statusCancelled}

func TestNewEnum(t *testing.T) {
	t.Run("should build a total mapping", func(t *testing.T) {
		m, err := NewEnum(allStatuses, map[orderStatus]string{
			statusOpen:      "OPEN",
			statusPaid:      "PAID",
			statusCancelled: "CANCELLED",
		})
		require.NoError(t, err)

		out, err := m.ToDB(statusPaid)
		require.NoError(t, err)
		assert.Equal(t, "PAID", out)

		back, err := m.FromDB("CANCELLED")
		require.NoError(t, err)
		assert.Equal(t, statusCancelled, back)
	})

	t.Run("should fail at construction when a constant is unmapped", func(t *testing.T) {
		_, err := NewEnum(allStatuses, map[orderStatus]string{
			statusOpen: "OPEN",
			statusPaid: "PAID",
		})
		var serr *SchemaError
		require.ErrorAs(t, err, &serr)
		assert.Contains(t, err.Error(), "no mapped value")
	})

	t.Run("should fail when two constants share a stored value", func(t *testing.T) {
		_, err := NewEnum(allStatuses, map[orderStatus]string{
			statusOpen:      "OPEN",
			statusPaid:      "OPEN",
			statusCancelled: "CANCELLED",
		})
		var serr *SchemaError
		require.ErrorAs(t, err, &serr)
	})

	t.Run("should fail when a constant is listed twice", func(t *testing.T) {
		_, err := NewEnum([]orderStatus{statusOpen, statusOpen}, map[orderStatus]string{
			statusOpen: "OPEN",
		})
		var serr *SchemaError
		require.ErrorAs(t, err, &serr)
	})

	t.Run("should reject an unknown stored value at read time", func(t *testing.T) {
		m := MustEnum(allStatuses, map[orderStatus]string{
			statusOpen:      "OPEN",
			statusPaid:      "PAID",
			statusCancelled: "CANCELLED",
		})
		_, err := m.FromDB("ARCHIVED")
		var merr *Error
		require.ErrorAs(t, err, &merr)
		assert.Equal(t, ErrUnparseable, merr.Kind)
	})

	t.Run("should panic in MustEnum on an invalid mapping", func(t *testing.T) {
		assert.Panics(t, func() {
			MustEnum(allStatuses, map[orderStatus]string{})
		})
	})
}
