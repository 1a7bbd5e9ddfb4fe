package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/ledger-atlas/pkg/models/domain"
	"github.com/de-tools/ledger-atlas/pkg/services/ledger"
)

type advisorMock struct {
	mock.Mock
}

func (m *advisorMock) Name() string { return "mock" }

func (m *advisorMock) Advise(ctx context.Context, anomalies []domain.Anomaly) (string, error) {
	args := m.Called(ctx, anomalies)
	return args.String(0), args.Error(1)
}

func outlierCSV() string {
	var b strings.Builder
	b.WriteString("items,debit,credit\n")
	for i := 0; i < 49; i++ {
		fmt.Fprintf(&b, "Account %d,%d,%d\n", i, 100+i*3, 100+i*3)
	}
	b.WriteString("Wire transfer,500000,\n")
	return b.String()
}

func TestAnalyzePipeline(t *testing.T) {
	adv := &advisorMock{}
	adv.On("Advise", mock.Anything, mock.Anything).Return("- Review the wire transfer", nil)

	engine := NewEngine(NewDetector(DefaultDetectorSettings()), adv)
	result, err := engine.Analyze(context.Background(), strings.NewReader(outlierCSV()))
	require.NoError(t, err)

	assert.False(t, result.Balance.Balanced)
	assert.Equal(t, "1 significant anomalies detected", result.AnomalySummary)
	require.Len(t, result.Anomalies, 1)
	assert.Equal(t, "Wire transfer", result.Anomalies[0].Item)
	assert.Equal(t, "- Review the wire transfer", result.Recommendations)
	adv.AssertExpectations(t)
}

func TestAnalyzeCollapsesAdvisorFailure(t *testing.T) {
	adv := &advisorMock{}
	adv.On("Advise", mock.Anything, mock.Anything).Return("", errors.New("model unavailable"))

	engine := NewEngine(NewDetector(DefaultDetectorSettings()), adv)
	result, err := engine.Analyze(context.Background(), strings.NewReader("items,debit,credit\nCash,100,100\n"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Recommendations, "AI error"))
}

func TestAnalyzeWithoutAdvisor(t *testing.T) {
	engine := NewEngine(NewDetector(DefaultDetectorSettings()), nil)
	result, err := engine.Analyze(context.Background(), strings.NewReader("items,debit,credit\nCash,100,100\n"))
	require.NoError(t, err)

	assert.Equal(t, MissingAdvisorText, result.Recommendations)
}

func TestAnalyzeRejectsBadCSV(t *testing.T) {
	engine := NewEngine(NewDetector(DefaultDetectorSettings()), nil)
	_, err := engine.Analyze(context.Background(), strings.NewReader("a,b\n1,2\n"))
	require.Error(t, err)

	var vErr *ledger.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "CSV must have columns: items, debit, credit", vErr.Detail)
}
