// internal/app/system/txn/txn.go
// Package txn runs multi-collection writes in a MongoDB transaction when
// the deployment supports one, and falls back to plain sequential writes on
// standalone servers.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// Server error codes meaning transactions are unavailable.
const (
	codeIllegalOperation    = 20  // standalone: transaction numbers need a replica set
	codeNotSupported        = 51  // storage engine without document-level locking
	codeOperationNotAllowed = 263 // command not allowed inside a transaction
)

// IsNotSupported reports whether err means the server cannot run a
// transaction, as opposed to the transaction body failing.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case codeIllegalOperation, codeNotSupported, codeOperationNotAllowed:
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "transaction") {
		return false
	}
	for _, hint := range []string{"replica set", "session", "not supported", "illegal operation"} {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}

// Run executes fn inside a transaction on client. When the server cannot
// run transactions fn is executed again without one, so fn must only write
// through the ctx it is given and be safe to retry after a rejected start.
func Run(ctx context.Context, client *mongo.Client, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if IsNotSupported(err) {
		return fn(ctx)
	}
	return err
}
