package reversi

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func posStrings(ps []Pos) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.String())
	}
	return out
}

func mustRows(t *testing.T, rows ...string) Board {
	t.Helper()
	b, err := ParseRows(rows)
	require.NoError(t, err)
	return b
}

func TestStartingBoardLayout(t *testing.T) {
	b := StartingBoard()
	rows := b.Rows()
	assert.Equal(t, "---WB---", rows[3])
	assert.Equal(t, "---BW---", rows[4])

	black, white := b.Count()
	assert.Equal(t, 2, black)
	assert.Equal(t, 2, white)
}

func TestLegalMovesOnStartingBoard(t *testing.T) {
	b := StartingBoard()
	assert.Equal(t, []string{"d3", "c4", "f5", "e6"}, posStrings(b.LegalMoves(Black)))
	assert.ElementsMatch(t, []string{"e3", "f4", "c5", "d6"}, posStrings(b.LegalMoves(White)))
}

func TestLegalMovesEmptyBoard(t *testing.T) {
	b := EmptyBoard()
	assert.Empty(t, b.LegalMoves(Black))
	assert.False(t, b.HasMove(White))
}

func TestApplyOpeningMove(t *testing.T) {
	b := StartingBoard()
	p, err := ParsePos("d3")
	require.NoError(t, err)

	next, flipped := b.Apply(p, Black)
	assert.Equal(t, 1, flipped)
	assert.Equal(t, Black, next.At(p))
	assert.Equal(t, Black, next.At(Pos{Col: 3, Row: 3}), "d4 flipped")

	black, white := next.Count()
	assert.Equal(t, 4, black)
	assert.Equal(t, 1, white)

	// receiver is untouched
	assert.Equal(t, StartingBoard(), b)
}

func TestApplyFlipsOnlyClosedRuns(t *testing.T) {
	// Black plays a1. Only the run along rank 1 is closed by a black disc;
	// the file-a run ends on an empty square and the diagonal runs off the board.
	b := mustRows(t,
		"-WWB----",
		"WW------",
		"W-W-----",
		"---W----",
		"----W---",
		"-----W--",
		"------W-",
		"-------W",
	)
	p := Pos{Col: 0, Row: 0}
	require.True(t, b.IsLegal(p, Black))

	next, flipped := b.Apply(p, Black)
	assert.Equal(t, 2, flipped)
	assert.Equal(t, "BBBB----", next.Rows()[0])
	assert.Equal(t, "WW------", next.Rows()[1])
	assert.Equal(t, "W-W-----", next.Rows()[2])
	assert.Equal(t, "-------W", next.Rows()[7])
}

func TestApplyMultipleDirections(t *testing.T) {
	b := mustRows(t,
		"B-B-B---",
		"-WWW----",
		"BW-WB---",
		"-WWW----",
		"B-B-B---",
		"--------",
		"--------",
		"--------",
	)
	next, flipped := b.Apply(Pos{Col: 2, Row: 2}, Black)
	assert.Equal(t, 8, flipped)
	black, white := next.Count()
	assert.Equal(t, 17, black)
	assert.Equal(t, 0, white)
}

func TestApplyIllegalIsNoop(t *testing.T) {
	b := StartingBoard()
	cases := []Pos{
		{Col: 0, Row: 0}, // no adjacent opponent
		{Col: 3, Row: 3}, // occupied
		{Col: 9, Row: 0}, // off board
	}
	for _, p := range cases {
		next, flipped := b.Apply(p, Black)
		assert.Equal(t, 0, flipped, p.String())
		assert.Equal(t, b, next, p.String())
	}

	next, flipped := b.Apply(Pos{Col: 3, Row: 2}, Empty)
	assert.Equal(t, 0, flipped)
	assert.Equal(t, b, next)
}

func TestParsePos(t *testing.T) {
	tests := []struct {
		in      string
		want    Pos
		wantErr bool
	}{
		{in: "a1", want: Pos{Col: 0, Row: 0}},
		{in: "h8", want: Pos{Col: 7, Row: 7}},
		{in: "D3", want: Pos{Col: 3, Row: 2}},
		{in: " e6 ", want: Pos{Col: 4, Row: 5}},
		{in: "i1", wantErr: true},
		{in: "a9", wantErr: true},
		{in: "a0", wantErr: true},
		{in: "", wantErr: true},
		{in: "d10", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePos(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrBadPosition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, strings.ToLower(strings.TrimSpace(tt.in)), got.String())
		})
	}
}

func TestRowsRoundTrip(t *testing.T) {
	b := StartingBoard()
	b, _ = b.Apply(Pos{Col: 3, Row: 2}, Black)
	b, _ = b.Apply(Pos{Col: 2, Row: 2}, White)

	parsed, err := ParseRows(b.Rows())
	require.NoError(t, err)
	assert.Equal(t, b, parsed)
}

func TestParseRowsRejectsGarbage(t *testing.T) {
	_, err := ParseRows([]string{"--------"})
	require.ErrorIs(t, err, ErrBadRows)

	rows := StartingBoard().Rows()
	rows[2] = "---X----"
	_, err = ParseRows(rows)
	require.ErrorIs(t, err, ErrBadRows)

	rows[2] = "-----"
	_, err = ParseRows(rows)
	require.ErrorIs(t, err, ErrBadRows)
}
