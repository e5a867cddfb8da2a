package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"valueconverting/pkg/platform/sentinel"
)

func TestStoreErrorClassifiesConnectionFailures(t *testing.T) {
	dial := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}

	for name, cause := range map[string]error{
		"bad conn":  driver.ErrBadConn,
		"conn done": sql.ErrConnDone,
		"dial":      dial,
	} {
		t.Run(name, func(t *testing.T) {
			err := storeError("find value converting by id", cause)
			assert.ErrorIs(t, err, sentinel.ErrUnavailable)
			assert.ErrorIs(t, err, cause)
		})
	}

	t.Run("query errors stay plain", func(t *testing.T) {
		cause := errors.New(`pq: relation "value_converting" does not exist`)
		err := storeError("count value convertings", cause)
		assert.NotErrorIs(t, err, sentinel.ErrUnavailable)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, `count value convertings: pq: relation "value_converting" does not exist`, err.Error())
	})

	t.Run("cancelled context is not unavailability", func(t *testing.T) {
		err := storeError("list value convertings", context.Canceled)
		assert.NotErrorIs(t, err, sentinel.ErrUnavailable)
	})
}
