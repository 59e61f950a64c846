package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/flotahub/internal/app/system/integrity"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeScanner struct {
	calls atomic.Int32
	err   error
}

func (f *fakeScanner) Scan(context.Context) (integrity.Report, error) {
	f.calls.Add(1)
	if f.err != nil {
		return integrity.Report{}, f.err
	}
	return integrity.Report{Findings: []integrity.Finding{
		{Collection: "services", ID: primitive.NewObjectID(), Problem: integrity.CrossOrgReference},
	}}, nil
}

func TestIntegrityScan_RecordsLastReport(t *testing.T) {
	s := &fakeScanner{}
	w := NewIntegrityScan(s, zap.NewNop(), 10*time.Millisecond, time.Second)
	w.Start()

	assert.Eventually(t, func() bool { return s.calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	w.Stop()

	assert.Equal(t, 1, w.Last().Count(integrity.CrossOrgReference))
}

func TestIntegrityScan_KeepsPreviousReportOnError(t *testing.T) {
	w := NewIntegrityScan(&fakeScanner{err: errors.New("mongo down")}, zap.NewNop(), time.Hour, time.Second)
	w.scan()
	assert.True(t, w.Last().Clean())
}
