package cfg

import "time"

type Cfg struct {
	// Storage
	DBPath   string
	SeedFile string

	// HTTP boundary
	Port              string
	APIAccessKey      string
	KeepAliveInterval time.Duration

	// Ingestion
	FetchInterval   time.Duration
	FetchTimeout    time.Duration
	FetchRetries    int
	TeaserMaxLength int

	// Logo resolution
	LogoPageTimeout time.Duration
	LogoIconTimeout time.Duration
	LogoMaxBytes    int64

	// Event forwarding
	AMQPURL      string
	AMQPExchange string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
