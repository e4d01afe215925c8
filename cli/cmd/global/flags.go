package global

const (
	ConfigFlag           = "config"
	OutputFlag           = "output"
	OutputFlagShortHand  = "o"
	DocumentFlag         = "document"
	ConcurrencyLimitFlag = "concurrency-limit"
)
