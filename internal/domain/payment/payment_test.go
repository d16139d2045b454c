package payment

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/etuitionbd/server/internal/domain/application"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAmount_UnmarshalRoundsToMinorUnits(t *testing.T) {
	var a Amount
	require.NoError(t, json.Unmarshal([]byte(`1500.75`), &a))
	assert.Equal(t, Amount(150075), a)

	require.NoError(t, json.Unmarshal([]byte(`0.125`), &a))
	assert.Equal(t, Amount(13), a)

	require.NoError(t, json.Unmarshal([]byte(`2000`), &a))
	assert.Equal(t, Amount(200000), a)

	assert.ErrorIs(t, json.Unmarshal([]byte(`"abc"`), &a), ErrInvalidAmount)
}

func TestFromMajor_Bounds(t *testing.T) {
	a, err := FromMajor(MaxMajor)
	require.NoError(t, err)
	assert.Equal(t, Amount(MaxMajor*100), a)

	for _, v := range []float64{MaxMajor + 1, -MaxMajor - 1, 9.3e16, math.Inf(1), math.NaN()} {
		_, err := FromMajor(v)
		assert.ErrorIs(t, err, ErrInvalidAmount, "value %v", v)
	}

	var decoded Amount
	assert.ErrorIs(t, json.Unmarshal([]byte(`92233720368547758`), &decoded), ErrInvalidAmount)
}

func TestAmount_Marshal(t *testing.T) {
	b, err := json.Marshal(Amount(150050))
	require.NoError(t, err)
	assert.Equal(t, "1500.5", string(b))

	assert.Equal(t, "0.30", Amount(30).String())
}

func TestSum_NoFloatDrift(t *testing.T) {
	payments := make([]Payment, 0, 10)
	for i := 0; i < 10; i++ {
		a, err := FromMajor(0.1)
		require.NoError(t, err)
		payments = append(payments, Payment{Amount: a})
	}

	total := Sum(payments)
	assert.Equal(t, Amount(100), total)
	assert.Equal(t, 1.0, total.Major())
}

func TestSum_Saturates(t *testing.T) {
	big := Payment{Amount: math.MaxInt64 - 10}

	assert.Equal(t, Amount(math.MaxInt64), Sum([]Payment{big, {Amount: 11}}))
	assert.Equal(t, Amount(math.MaxInt64), Sum([]Payment{big, big, big}))
	assert.Equal(t, Amount(math.MinInt64), Sum([]Payment{{Amount: math.MinInt64 + 1}, {Amount: -5}}))
	assert.Equal(t, Amount(math.MaxInt64-9), Sum([]Payment{big, {Amount: 1}}))
}

func TestNew_DefaultsTutorAndDerivesTransactionID(t *testing.T) {
	app := application.Application{
		ID:        primitive.NewObjectID(),
		TuitionID: primitive.NewObjectID(),
		TutorID:   primitive.NewObjectID(),
	}
	payer := primitive.NewObjectID()

	p := New(app, payer, primitive.NilObjectID, Amount(500000))

	assert.Equal(t, app.TutorID, p.TutorID)
	assert.Equal(t, app.ID, p.ApplicationID)
	assert.Equal(t, app.TuitionID, p.TuitionID)
	assert.Equal(t, payer, p.StudentID)
	assert.Equal(t, StatusSuccess, p.Status)
	assert.True(t, strings.HasPrefix(p.TransactionID, "TXN"))
	assert.Equal(t, TransactionID(p.CreatedAt), p.TransactionID)
	assert.WithinDuration(t, time.Now(), p.CreatedAt, 5*time.Second)

	other := primitive.NewObjectID()
	assert.Equal(t, other, New(app, payer, other, Amount(1)).TutorID)
}

func TestSummarize_EmptyIsNotNull(t *testing.T) {
	b, err := json.Marshal(Summarize(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"payments":[],"total":0}`, string(b))
}
