package grouping

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tp-distribuidos-2c2025/streamagg/protocol/record"
	"github.com/tp-distribuidos-2c2025/streamagg/workers/mapper/shared/mapping"
	"github.com/tp-distribuidos-2c2025/streamagg/workers/reducer/shared/aggregation"
)

func runSum(t *testing.T, input string) []aggregation.Aggregate[int64] {
	t.Helper()
	var out []aggregation.Aggregate[int64]
	g := New[int64](aggregation.Sum{}, func(agg aggregation.Aggregate[int64]) error {
		out = append(out, agg)
		return nil
	})
	require.NoError(t, g.Run(strings.NewReader(input)))
	return out
}

func runAverage(t *testing.T, input string) []aggregation.Aggregate[float64] {
	t.Helper()
	var out []aggregation.Aggregate[float64]
	g := New[float64](aggregation.Average{}, func(agg aggregation.Aggregate[float64]) error {
		out = append(out, agg)
		return nil
	})
	require.NoError(t, g.Run(strings.NewReader(input)))
	return out
}

func TestSumOfContiguousRecords(t *testing.T) {
	got := runSum(t, "w\t1\nw\t1\nw\t1\n")
	assert.Equal(t, []aggregation.Aggregate[int64]{{Key: "w", Count: 3, Result: 3}}, got)
}

func TestAverageOfContiguousRecords(t *testing.T) {
	got := runAverage(t, "M\t1.0\nM\t2.0\nM\t3.0\n")
	require.Len(t, got, 1)
	assert.Equal(t, "M", got[0].Key)
	assert.Equal(t, 2.0, got[0].Result)
}

func TestEmptyInputEmitsNothing(t *testing.T) {
	assert.Empty(t, runSum(t, ""))
	assert.Empty(t, runAverage(t, "\n\n   \n"))
}

func TestOutputFollowsInputClusterOrder(t *testing.T) {
	got := runSum(t, "zebra\t1\nzebra\t2\napple\t1\nmango\t4\nmango\t1\n")
	assert.Equal(t, []aggregation.Aggregate[int64]{
		{Key: "zebra", Count: 2, Result: 3},
		{Key: "apple", Count: 1, Result: 1},
		{Key: "mango", Count: 2, Result: 5},
	}, got)
}

func TestNonContiguousRepeatsAreNotMerged(t *testing.T) {
	got := runSum(t, "k\t1\nj\t1\nk\t1\n")
	assert.Equal(t, []aggregation.Aggregate[int64]{
		{Key: "k", Count: 1, Result: 1},
		{Key: "j", Count: 1, Result: 1},
		{Key: "k", Count: 1, Result: 1},
	}, got)
}

func TestFinalGroupIsFlushedWithoutTrailingNewline(t *testing.T) {
	got := runSum(t, "a\t1\nb\t2")
	assert.Equal(t, []aggregation.Aggregate[int64]{
		{Key: "a", Count: 1, Result: 1},
		{Key: "b", Count: 1, Result: 2},
	}, got)
}

func TestMalformedLineLeavesAccumulatorUntouched(t *testing.T) {
	var out []aggregation.Aggregate[int64]
	g := New[int64](aggregation.Sum{}, func(agg aggregation.Aggregate[int64]) error {
		out = append(out, agg)
		return nil
	})

	require.NoError(t, g.ConsumeLine("w\t1"))
	require.NoError(t, g.ConsumeLine("w\t1"))
	before, live := g.pending()
	require.True(t, live)

	require.NoError(t, g.ConsumeLine("no separator"))
	require.NoError(t, g.ConsumeLine("w\tnot-a-number"))
	require.NoError(t, g.ConsumeLine("w\t1.5"))

	after, live := g.pending()
	require.True(t, live)
	assert.Equal(t, before, after)
	assert.Equal(t, int64(2), after.Count)
	assert.Equal(t, int64(2), after.Sum)
	assert.Empty(t, out)

	require.NoError(t, g.Flush())
	assert.Equal(t, []aggregation.Aggregate[int64]{{Key: "w", Count: 2, Result: 2}}, out)

	stats := g.Stats()
	assert.Equal(t, int64(5), stats.Lines)
	assert.Equal(t, int64(2), stats.Records)
	assert.Equal(t, int64(3), stats.Skipped)
	assert.Equal(t, int64(1), stats.Aggregates)
}

func TestMalformedFirstRecordDoesNotStartGroup(t *testing.T) {
	got := runAverage(t, "PSNR\tabc\nPSNR\t10\n\nPSNR\t20\r\n")
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].Count)
	assert.Equal(t, 15.0, got[0].Result)
}

func TestValueWhitespaceIsTolerated(t *testing.T) {
	got := runSum(t, "w\t 2 \nw\t3\n")
	assert.Equal(t, []aggregation.Aggregate[int64]{{Key: "w", Count: 2, Result: 5}}, got)
}

func TestOverflowRecordIsDropped(t *testing.T) {
	input := fmt.Sprintf("w\t%d\nw\t1\nw\t1\n", int64(9223372036854775806))
	got := runSum(t, input)
	assert.Equal(t, []aggregation.Aggregate[int64]{{Key: "w", Count: 2, Result: 9223372036854775807}}, got)
}

func TestFlushIsIdempotent(t *testing.T) {
	calls := 0
	g := New[int64](aggregation.Sum{}, func(aggregation.Aggregate[int64]) error {
		calls++
		return nil
	})

	require.NoError(t, g.Flush())
	require.NoError(t, g.Consume(record.New("a", "1")))
	require.NoError(t, g.Flush())
	require.NoError(t, g.Flush())

	assert.Equal(t, 1, calls)
	_, live := g.pending()
	assert.False(t, live)
}

func TestEmitErrorIsFatal(t *testing.T) {
	boom := errors.New("broken pipe")
	g := New[int64](aggregation.Sum{}, func(aggregation.Aggregate[int64]) error {
		return boom
	})

	err := g.Run(strings.NewReader("a\t1\nb\t1\nc\t1\n"))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(0), g.Stats().Aggregates)
}

type failAfterReader struct {
	data io.Reader
}

func (r *failAfterReader) Read(p []byte) (int, error) {
	n, err := r.data.Read(p)
	if errors.Is(err, io.EOF) {
		return n, io.ErrUnexpectedEOF
	}
	return n, err
}

func TestReadErrorSkipsFinalFlush(t *testing.T) {
	var out []aggregation.Aggregate[int64]
	g := New[int64](aggregation.Sum{}, func(agg aggregation.Aggregate[int64]) error {
		out = append(out, agg)
		return nil
	})

	err := g.Run(&failAfterReader{data: strings.NewReader("a\t1\nb\t1\n")})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, []aggregation.Aggregate[int64]{{Key: "a", Count: 1, Result: 1}}, out)
}

func TestAverageOutputMatchesLeftToRightSum(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "M\t0.1\nM\t0.2\nM\t0.3\n", want: "M\t0.20000000000000004\n"},
		{input: strings.Repeat("M\t0.1\n", 10), want: "M\t0.09999999999999999\n"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		g := New[float64](aggregation.Average{}, WriterSink[float64](record.NewWriter(&buf), aggregation.Average{}))
		require.NoError(t, g.Run(strings.NewReader(tt.input)))
		assert.Equal(t, tt.want, buf.String())
	}
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	w := record.NewWriter(&buf)

	sum := New[int64](aggregation.Sum{}, WriterSink[int64](w, aggregation.Sum{}))
	require.NoError(t, sum.Run(strings.NewReader("the\t1\nthe\t1\ncat\t1\n")))
	assert.Equal(t, "the\t2\ncat\t1\n", buf.String())

	buf.Reset()
	avg := New[float64](aggregation.Average{}, WriterSink[float64](w, aggregation.Average{}))
	require.NoError(t, avg.Run(strings.NewReader("PSNR\t20.0\nPSNR\t22.0\n")))
	assert.Equal(t, "PSNR\t21.0\n", buf.String())
}

// Each key's emitted counts must add up to its number of valid records.
func TestCountsMatchValidRecords(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	keys := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	want := map[string]int64{}

	var input strings.Builder
	for _, key := range keys {
		n := 1 + rng.Intn(50)
		for i := 0; i < n; i++ {
			switch rng.Intn(6) {
			case 0:
				input.WriteString("garbage without tab\n")
			case 1:
				fmt.Fprintf(&input, "%s\tNaN-ish\n", key)
			default:
				fmt.Fprintf(&input, "%s\t1\n", key)
				want[key]++
			}
		}
	}

	got := map[string]int64{}
	for _, agg := range runSum(t, input.String()) {
		got[agg.Key] += agg.Count
		assert.Equal(t, agg.Count, agg.Result)
	}

	for key, n := range want {
		assert.Equal(t, n, got[key], key)
	}
	assert.Len(t, got, len(want))
}

func TestMetricsEndToEnd(t *testing.T) {
	mapper, err := mapping.NewMapper(mapping.KindMetrics)
	require.NoError(t, err)

	logLines := []string{
		"img_ind: 0, PSNR: 20.00, LPIPS: 0.1000",
		"img_ind: 1, PSNR: 22.00, LPIPS: 0.2000",
		"Total Average PSNR: 21.00",
	}

	var emitted []record.Record
	for _, line := range logLines {
		require.NoError(t, mapper.Map(line, func(r record.Record) error {
			emitted = append(emitted, r)
			return nil
		}))
	}

	// The shuffle stage clusters records by key before the reducer sees them.
	sort.SliceStable(emitted, func(i, j int) bool { return emitted[i].Key < emitted[j].Key })

	var shuffled strings.Builder
	for _, r := range emitted {
		shuffled.Write(r.AppendLine(nil))
	}

	got := runAverage(t, shuffled.String())
	require.Len(t, got, 2)

	assert.Equal(t, "LPIPS", got[0].Key)
	assert.Equal(t, int64(2), got[0].Count)
	assert.InDelta(t, 0.15, got[0].Result, 1e-12)

	assert.Equal(t, "PSNR", got[1].Key)
	assert.Equal(t, int64(3), got[1].Count)
	assert.Equal(t, 21.0, got[1].Result)
}

func TestWordCountEndToEnd(t *testing.T) {
	mapper, err := mapping.NewMapper(mapping.KindWordCount)
	require.NoError(t, err)

	var emitted []record.Record
	for _, line := range []string{"To be, or not to be:", "that is the question."} {
		require.NoError(t, mapper.Map(line, func(r record.Record) error {
			emitted = append(emitted, r)
			return nil
		}))
	}
	sort.SliceStable(emitted, func(i, j int) bool { return emitted[i].Key < emitted[j].Key })

	var shuffled strings.Builder
	for _, r := range emitted {
		shuffled.Write(r.AppendLine(nil))
	}

	var out bytes.Buffer
	g := New[int64](aggregation.Sum{}, WriterSink[int64](record.NewWriter(&out), aggregation.Sum{}))
	require.NoError(t, g.Run(strings.NewReader(shuffled.String())))

	assert.Equal(t, "be\t2\nis\t1\nnot\t1\nor\t1\nquestion\t1\nthat\t1\nthe\t1\nto\t2\n", out.String())
}
