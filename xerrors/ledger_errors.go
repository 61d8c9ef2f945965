package xerrors

// 账本错误目录。使用时通过 Derive 派生带详情的新实例，匹配时使用 errors.Is。
var (
	// ErrInvalidHorizon 时间范围的结束日期不晚于开始日期。
	ErrInvalidHorizon = New(ErrInvalidArg, 400101, "invalid horizon", "horizon end must be after its start", nil)
	// ErrInvalidDateRange 查询区间的起始日期晚于结束日期。
	ErrInvalidDateRange = New(ErrInvalidArg, 400102, "invalid date range", "date_from must not be after date_to", nil)
	// ErrInvalidAmount 金额不是有限的非负数。
	ErrInvalidAmount = New(ErrInvalidArg, 400103, "invalid amount", "amount must be a finite non-negative number", nil)
	// ErrInvalidPercent 税率百分比越界。
	ErrInvalidPercent = New(ErrInvalidArg, 400104, "invalid tax percent", "percent must lie in [0, 100]", nil)
	// ErrMalformedRequest 请求行无法解析。
	ErrMalformedRequest = New(ErrInvalidArg, 400105, "malformed request", "expected: <Command> <date_from> <date_to> [<number>]", nil)
	// ErrUnknownRequest 未知的请求类型。
	ErrUnknownRequest = New(ErrInvalidArg, 400106, "unknown request", "supported: Earn, Spend, PayTax, ComputeIncome", nil)
	// ErrInvalidDate 日期格式错误或日期不存在。
	ErrInvalidDate = New(ErrInvalidArg, 400107, "invalid date", "expected a calendar date in YYYY-MM-DD form", nil)
	// ErrDateOutOfHorizon 日期落在账本时间范围之外。
	ErrDateOutOfHorizon = New(ErrOutOfRange, 416101, "date out of horizon", "date must lie in [start, end) of the ledger horizon", nil)
	// ErrRequestTooLarge 请求体超过 server.max_body_bytes。
	ErrRequestTooLarge = New(ErrTooLarge, 413101, "request body too large", "", nil)
)
