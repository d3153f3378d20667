package sequence

import (
	"math"
	"testing"

	"github.com/finbooks/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestSequence(t *testing.T) *Sequence {
	t.Helper()
	seq, err := NewSequence("ar_invoice_seq", 1, 1, math.MaxInt64, false)
	require.NoError(t, err)
	return seq
}

func TestNewSequence(t *testing.T) {
	seq := createTestSequence(t)

	assert.Equal(t, "ar_invoice_seq", seq.Name)
	assert.Equal(t, int64(0), seq.CurrentValue, "counter starts one step below min")
	assert.Equal(t, int64(1), seq.MinValue)
	assert.False(t, seq.Cycle)
}

func TestNewSequence_Validation(t *testing.T) {
	tests := []struct {
		name        string
		seqName     string
		incrementBy int64
		minValue    int64
		maxValue    int64
	}{
		{"empty name", "", 1, 1, 100},
		{"zero increment", "seq", 0, 1, 100},
		{"negative increment", "seq", -1, 1, 100},
		{"min above max", "seq", 1, 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := NewSequence(tt.seqName, tt.incrementBy, tt.minValue, tt.maxValue, false)
			assert.Nil(t, seq)
			require.Error(t, err)
		})
	}
}

func TestSequenceNext_StrictlyIncreasing(t *testing.T) {
	seq := createTestSequence(t)

	var previous int64
	for i := 0; i < 100; i++ {
		v, err := seq.Next()
		require.NoError(t, err)
		assert.Greater(t, v, previous)
		previous = v
	}
	assert.Equal(t, int64(100), seq.CurrentValue)
}

func TestSequenceNext_FirstValueIsMin(t *testing.T) {
	seq, err := NewSequence("po_seq", 1, 1000, 9999, false)
	require.NoError(t, err)

	v, err := seq.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(1000), v)
}

func TestSequenceNext_CustomIncrement(t *testing.T) {
	seq, err := NewSequence("step_seq", 10, 10, 1000, false)
	require.NoError(t, err)

	v1, err := seq.Next()
	require.NoError(t, err)
	v2, err := seq.Next()
	require.NoError(t, err)

	assert.Equal(t, int64(10), v1)
	assert.Equal(t, int64(20), v2)
}

func TestSequenceNext_Exhaustion(t *testing.T) {
	seq, err := NewSequence("tiny_seq", 1, 1, 2, false)
	require.NoError(t, err)

	_, err = seq.Next()
	require.NoError(t, err)
	_, err = seq.Next()
	require.NoError(t, err)

	v, err := seq.Next()
	assert.Equal(t, int64(0), v)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "SEQUENCE_EXHAUSTED", domainErr.Code)

	// Exhaustion does not advance the counter
	assert.Equal(t, int64(2), seq.CurrentValue)
}

func TestSequenceNext_CycleWrapsToMin(t *testing.T) {
	seq, err := NewSequence("cycle_seq", 1, 1, 2, true)
	require.NoError(t, err)

	values := make([]int64, 0, 4)
	for i := 0; i < 4; i++ {
		v, err := seq.Next()
		require.NoError(t, err)
		values = append(values, v)
	}
	assert.Equal(t, []int64{1, 2, 1, 2}, values)
}

func TestSequenceRemaining(t *testing.T) {
	seq, err := NewSequence("rem_seq", 1, 1, 10, false)
	require.NoError(t, err)
	assert.Equal(t, int64(10), seq.Remaining())

	_, err = seq.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(9), seq.Remaining())

	cycling, err := NewSequence("cyc_seq", 1, 1, 10, true)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), cycling.Remaining())
}

func TestNumberFormatRender(t *testing.T) {
	tests := []struct {
		name   string
		format NumberFormat
		value  int64
		want   string
	}{
		{"zero padded", NumberFormat{Prefix: "AR-", Width: 6}, 42, "AR-000042"},
		{"width overflow keeps digits", NumberFormat{Prefix: "AP-", Width: 4}, 123456, "AP-123456"},
		{"no width", NumberFormat{Prefix: "RV-"}, 7, "RV-7"},
		{"no prefix", NumberFormat{Width: 3}, 5, "005"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.format.Render(tt.value))
		})
	}
}
