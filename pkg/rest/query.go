package rest

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/milan604/restkit/pkg/apperr"
	"github.com/milan604/restkit/pkg/utils"
)

type valueKind int

const (
	kindNull valueKind = iota
	kindString
	kindInt
	kindUint
	kindFloat
	kindBool
	kindTime
	kindStrings
	kindInts
	kindOther
)

// QueryValue is one query parameter value. Each variant has a fixed,
// locale-independent text form; build one with the constructors below or
// let Value pick the variant.
type QueryValue struct {
	kind valueKind
	str  string
	i    int64
	u    uint64
	f    float64
	b    bool
	t    time.Time
	strs []string
	ints []int
	v    any
}

// Null renders as the empty string.
func Null() QueryValue { return QueryValue{kind: kindNull} }

func String(s string) QueryValue  { return QueryValue{kind: kindString, str: s} }
func Int(n int64) QueryValue      { return QueryValue{kind: kindInt, i: n} }
func Uint(n uint64) QueryValue    { return QueryValue{kind: kindUint, u: n} }
func Float(f float64) QueryValue  { return QueryValue{kind: kindFloat, f: f} }
func Bool(b bool) QueryValue      { return QueryValue{kind: kindBool, b: b} }
func Time(t time.Time) QueryValue { return QueryValue{kind: kindTime, t: t} }

// Strings renders as the comma-joined values.
func Strings(s ...string) QueryValue { return QueryValue{kind: kindStrings, strs: s} }

// Ints renders as the comma-joined decimal values.
func Ints(n ...int) QueryValue { return QueryValue{kind: kindInts, ints: n} }

// Value picks the variant from the dynamic type of v. Types without a
// variant use their default string form.
func Value(v any) QueryValue {
	switch x := v.(type) {
	case nil:
		return Null()
	case QueryValue:
		return x
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case int, int8, int16, int32, int64:
		return Int(cast.ToInt64(x))
	case uint, uint8, uint16, uint32, uint64:
		return Uint(cast.ToUint64(x))
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case time.Time:
		return Time(x)
	case *time.Time:
		if x == nil {
			return Null()
		}
		return Time(*x)
	case []string:
		return Strings(x...)
	case []int:
		return Ints(x...)
	default:
		return QueryValue{kind: kindOther, v: v}
	}
}

// String returns the wire text of the value before percent-encoding.
func (q QueryValue) String() string {
	switch q.kind {
	case kindString:
		return q.str
	case kindInt:
		return strconv.FormatInt(q.i, 10)
	case kindUint:
		return strconv.FormatUint(q.u, 10)
	case kindFloat:
		return strconv.FormatFloat(q.f, 'f', -1, 64)
	case kindBool:
		return strconv.FormatBool(q.b)
	case kindTime:
		return q.t.Format(time.RFC3339Nano)
	case kindStrings:
		return strings.Join(q.strs, ",")
	case kindInts:
		return strings.Join(utils.Map(q.ints, strconv.Itoa), ",")
	case kindOther:
		if s, ok := q.v.(fmt.Stringer); ok {
			return s.String()
		}
		if s, err := cast.ToStringE(q.v); err == nil {
			return s
		}
		return fmt.Sprint(q.v)
	default:
		return ""
	}
}

// Params maps query keys to values. Keys are unique; the last write wins.
type Params map[string]QueryValue

// Set stores Value(v) under key and returns p.
func (p Params) Set(key string, v any) Params {
	p[key] = Value(v)
	return p
}

// BuildURI parses baseURL, keeps its existing query and overlays params on
// top of it. baseURL must be an absolute http or https URL.
func BuildURI(baseURL string, params Params) (*url.URL, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, apperr.New(apperr.ErrorCodeInvalidBaseURL).WithMessage("base url is empty")
	}
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrorCodeInvalidBaseURL, err, "parse base url %q", baseURL)
	}
	if !utils.Contains([]string{"http", "https"}, strings.ToLower(u.Scheme)) || u.Host == "" {
		return nil, apperr.Newf(apperr.ErrorCodeInvalidBaseURL, "base url %q must be an absolute http(s) url", baseURL)
	}

	if len(params) > 0 {
		q := u.Query()
		for k, v := range params {
			q.Set(k, v.String())
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}
