package document

import (
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
)

func run(s string, x, y, w float64) pdf.Text {
	return pdf.Text{S: s, X: x, Y: y, W: w, FontSize: 10}
}

func TestAssembleWords_MergesAdjacentRuns(t *testing.T) {
	// "SOURCE" emitted as two fragments on the same baseline.
	runs := []pdf.Text{
		run("SOU", 50, 700, 18),
		run("RCE", 68.5, 700, 18),
	}

	words := assembleWords(runs, 792)

	assert.Len(t, words, 1)
	assert.Equal(t, "SOURCE", words[0].Text)
	assert.InDelta(t, 50.0, words[0].X0, 0.01)
	assert.InDelta(t, 86.5, words[0].X1, 0.01)
	// Top-left origin: top = pageHeight - (baseline + fontSize).
	assert.InDelta(t, 82.0, words[0].Top, 0.01)
	assert.InDelta(t, 92.0, words[0].Bottom, 0.01)
}

func TestAssembleWords_SplitsOnGapsAndBaselines(t *testing.T) {
	runs := []pdf.Text{
		run("FUND", 50, 650, 28),
		run("BALANCE", 100, 650, 50), // wide gap: separate word
		run("Amount", 50, 600, 40),   // different baseline
	}

	words := assembleWords(runs, 792)

	assert.Len(t, words, 3)
	assert.Equal(t, "FUND", words[0].Text)
	assert.Equal(t, "BALANCE", words[1].Text)
	assert.Equal(t, "Amount", words[2].Text)
	assert.Greater(t, words[2].Top, words[0].Top)
}

func TestAssembleWords_SpaceRunTerminatesWord(t *testing.T) {
	runs := []pdf.Text{
		run("Tax", 50, 700, 20),
		run(" ", 70, 700, 3),
		run("Increment", 73, 700, 50),
	}

	words := assembleWords(runs, 792)

	assert.Len(t, words, 2)
	assert.Equal(t, "Tax", words[0].Text)
	assert.Equal(t, "Increment", words[1].Text)
}

func TestAssembleWords_OrdersScrambledInput(t *testing.T) {
	runs := []pdf.Text{
		run("second", 50, 600, 30),
		run("first", 50, 700, 30),
	}

	words := assembleWords(runs, 792)

	assert.Equal(t, "first", words[0].Text)
	assert.Equal(t, "second", words[1].Text)
}
