package protocol

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/wyfcoding/budget/xerrors"
)

// maxLineSize 限制单行长度，请求行远小于该值。
const maxLineSize = 1 << 20

// ReadRequests 读取请求数量行以及随后的至多 Q 行请求。
//
// 未知命令与空行被跳过。skipInvalid 为 false 时格式错误的行立即返回带行号的
// ErrMalformedRequest；为 true 时记录告警后跳过。输入在 Q 行之前结束不视为错误。
func ReadRequests(r io.Reader, skipInvalid bool, opts ...Option) ([]Request, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, xerrors.WrapInternal(err, "read request count")
		}
		return nil, xerrors.ErrMalformedRequest.Derive("missing request count").WithContext("line", 1)
	}
	countLine := strings.TrimSpace(scanner.Text())
	count, err := strconv.Atoi(countLine)
	if err != nil || count < 0 {
		return nil, xerrors.ErrMalformedRequest.Derive("request count %q", countLine).WithContext("line", 1)
	}

	logger := newOptions(opts).logger
	requests := make([]Request, 0, min(count, 1<<16))
	line := 1
	for i := 0; i < count; i++ {
		if !scanner.Scan() {
			break
		}
		line++

		req, err := ParseRequest(scanner.Text())
		switch {
		case err == nil:
			req.Line = line
			requests = append(requests, req)
		case errors.Is(err, xerrors.ErrUnknownRequest):
			logger.Debug("skipping unknown request", "line", line, "error", err)
		case skipInvalid:
			logger.Warn("skipping malformed request", "line", line, "error", err)
		default:
			var xe *xerrors.Error
			if errors.As(err, &xe) {
				return nil, xe.WithContext("line", line)
			}
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, xerrors.WrapInternal(err, "read requests")
	}
	if line-1 < count {
		logger.Warn("input ended before request count was reached", "expected", count, "read", line-1)
	}
	return requests, nil
}
