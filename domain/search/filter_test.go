package search

import (
	"chat-session/errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseFilter_Comparisons(t *testing.T) {
	key := "1512860944810468536"

	for _, op := range []string{"<=", "<", ">=", ">", "="} {
		t.Run(op, func(t *testing.T) {
			req := require.New(t)
			arg := string(Time) + op + key

			f, err := ParseFilter(arg)

			req.NoError(err)
			req.Equal(arg, f.Arg)
			req.Equal(Time, f.Type)
			req.Equal(op, f.Operator)
			req.Equal(key, f.Key)
		})
	}
}

func TestParseFilter_DefaultsToKeyword(t *testing.T) {
	req := require.New(t)

	f, err := ParseFilter("token")

	req.NoError(err)
	req.Equal(Keyword, f.Type)
	req.Equal("=", f.Operator)
	req.Equal("token", f.Key)
}

func TestParseFilter_KeywordSpecified(t *testing.T) {
	req := require.New(t)

	f, err := ParseFilter("key=token")

	req.NoError(err)
	req.Equal(Keyword, f.Type)
	req.Equal("=", f.Operator)
	req.Equal("token", f.Key)
	req.Equal("key=token", f.String())
}

func TestParseFilter_MarkerWithoutOperatorIsAKeyword(t *testing.T) {
	for _, arg := range []string{"keyboard", "timeout", "hello world"} {
		f, err := ParseFilter(arg)
		require.NoError(t, err)
		require.Equal(t, Filter{Arg: arg, Type: Keyword, Operator: "=", Key: arg}, f)
	}
}

func TestParseFilter_TimestampFormats(t *testing.T) {
	req := require.New(t)

	// Nanosecond epoch passes through
	f, err := ParseFilter("time=1512860944810468536")
	req.NoError(err)
	req.Equal("1512860944810468536", f.Key)

	// Calendar date is midnight UTC
	f, err = ParseFilter("time=2017-12-08")
	req.NoError(err)
	req.Equal("1512691200000000000", f.Key)

	// Compact local datetime has millisecond precision only
	local, err := time.ParseInLocation("20060102T150405", "20171208T121212", time.Local)
	req.NoError(err)
	f, err = ParseFilter("time=20171208T121212")
	req.NoError(err)
	req.Equal(strconv.FormatInt(local.UnixMilli(), 10)+"000000", f.Key)
}

func TestParseFilter_Invalid(t *testing.T) {
	tests := []struct {
		name string
		arg  string
	}{
		{"Empty", ""},
		{"Blank", "   "},
		{"Time marker alone", "time"},
		{"Time without key", "time>"},
		{"Time with garbage", "time>yesterday"},
		{"Impossible date", "time=2017-13-45"},
		{"Keyword without key", "key="},
		{"Keyword with ordering", "key<token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFilter(tt.arg)
			require.ErrorIs(t, err, errors.ErrFilterParse)
		})
	}
}

func TestNewerThan(t *testing.T) {
	req := require.New(t)

	f := NewerThan(100)

	req.Equal("time>100", f.String())
	req.False(f.Match(99))
	req.False(f.Match(100))
	req.True(f.Match(101))
}

func TestFilter_Match(t *testing.T) {
	tests := []struct {
		op       string
		ts       int64
		expected bool
	}{
		{"<=", 10, true},
		{"<=", 11, false},
		{"<", 9, true},
		{"<", 10, false},
		{">=", 10, true},
		{">=", 9, false},
		{">", 11, true},
		{"=", 10, true},
		{"=", 11, false},
	}

	for _, tt := range tests {
		f, err := ParseFilter("time" + tt.op + "10")
		require.NoError(t, err)
		require.Equal(t, tt.expected, f.Match(tt.ts), "%s %d", tt.op, tt.ts)
	}

	keyword, err := ParseFilter("hello")
	require.NoError(t, err)
	require.False(t, keyword.Match(10))
}
