// Package protocol 实现账本的文本请求协议。
//
// 输入第一行是请求数量 Q，随后 Q 行每行一个请求：
//
//	Earn <date_from> <date_to> <amount>
//	Spend <date_from> <date_to> <amount>
//	PayTax <date_from> <date_to> <percent>
//	ComputeIncome <date_from> <date_to>
//
// 每个 ComputeIncome 产生一行输出。
package protocol

import (
	"strings"
	"time"

	"github.com/wyfcoding/budget/datetime"
	"github.com/wyfcoding/budget/money"
	"github.com/wyfcoding/budget/validator"
	"github.com/wyfcoding/budget/xerrors"
)

// Kind 是请求类型。
type Kind string

const (
	KindEarn          Kind = "Earn"
	KindSpend         Kind = "Spend"
	KindPayTax        Kind = "PayTax"
	KindComputeIncome Kind = "ComputeIncome"
)

// HasValue 报告该类型的请求是否带有数值参数。
func (k Kind) HasValue() bool {
	return k != KindComputeIncome
}

// IsQuery 报告该类型的请求是否产生输出。
func (k Kind) IsQuery() bool {
	return k == KindComputeIncome
}

func parseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindEarn, KindSpend, KindPayTax, KindComputeIncome:
		return k, true
	default:
		return "", false
	}
}

// Request 是解析后的一条请求。Value 对 Earn/Spend 是金额，对 PayTax 是百分比。
type Request struct {
	Kind  Kind
	From  time.Time
	To    time.Time
	Value float64
	Line  int // 在输入中的行号，从 1 开始；直接调用 ParseRequest 时为 0
}

// String 以协议格式输出请求。
func (r Request) String() string {
	parts := []string{string(r.Kind), datetime.FormatDate(r.From), datetime.FormatDate(r.To)}
	if r.Kind.HasValue() {
		parts = append(parts, money.FormatSignificant(r.Value, 0))
	}
	return strings.Join(parts, " ")
}

// ParseRequest 解析一行请求。
// 未知的命令返回 ErrUnknownRequest，字段数量或格式错误返回 ErrMalformedRequest。
func ParseRequest(line string) (Request, error) {
	if validator.IsEmpty(line) {
		return Request{}, xerrors.ErrUnknownRequest.Derive("empty line")
	}
	fields := strings.Fields(line)

	kind, ok := parseKind(fields[0])
	if !ok {
		return Request{}, xerrors.ErrUnknownRequest.Derive("%q", fields[0])
	}

	want := 3
	if kind.HasValue() {
		want = 4
	}
	if len(fields) != want {
		return Request{}, xerrors.ErrMalformedRequest.Derive("%s expects %d fields, got %d", kind, want, len(fields))
	}

	from, err := datetime.ParseDate(fields[1])
	if err != nil {
		return Request{}, xerrors.ErrMalformedRequest.Derive("date_from %q", fields[1]).WithCause(err)
	}
	to, err := datetime.ParseDate(fields[2])
	if err != nil {
		return Request{}, xerrors.ErrMalformedRequest.Derive("date_to %q", fields[2]).WithCause(err)
	}

	req := Request{Kind: kind, From: from, To: to}
	if kind.HasValue() {
		req.Value, err = money.ParseFloat(fields[3])
		if err != nil {
			return Request{}, xerrors.ErrMalformedRequest.Derive("number %q", fields[3]).WithCause(err)
		}
	}
	return req, nil
}
