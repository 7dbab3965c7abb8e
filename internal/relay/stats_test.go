package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordReconcilRunningAverages(t *testing.T) {
	s := newNodeStats(1, int(Regular), 0)

	s.recordReconcil(ReconcilRecord{SetInSize: 10, SetOutSize: 10, DiffSize: 4})
	s.recordReconcil(ReconcilRecord{SetInSize: 20, SetOutSize: 20, DiffSize: 8})

	assert.Equal(t, 2, s.Reconcils)
	assert.Equal(t, 6.0, s.ReconcilDiffsAverage)
	assert.Equal(t, 15, s.ReconcilSetSizeAverage)
	assert.Len(t, s.ReconcilData, 2)
}

func TestRecordReconcilSetSizeAverageIsNotAlwaysZero(t *testing.T) {
	s := newNodeStats(1, int(Regular), 0)

	for i := 0; i < 5; i++ {
		s.recordReconcil(ReconcilRecord{SetInSize: 3, SetOutSize: 3, DiffSize: 1})
	}

	assert.Equal(t, 3, s.ReconcilSetSizeAverage, "an integer-division bug would truncate this to 0")
}
