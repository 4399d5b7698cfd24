package logger

import "log/slog"

type Backend string

const (
	BackendStd Backend = "std" // slog text handler, meant for dev
	BackendZap Backend = "zap" // zap JSON core with sampling, meant for stage/prod
)

type Env string

const (
	EnvDev   Env = "dev"
	EnvStage Env = "stage"
	EnvProd  Env = "prod"
)

type Config struct {
	// Identity attrs attached to every record.
	Service    string
	Version    string
	InstanceID string

	// Output control.
	Level   slog.Level
	Env     Env
	Backend Backend // default: zap for stage/prod, std for dev
	Debug   bool

	// Zap sampling knobs (zap backend only).
	SampleInitial    int
	SampleThereafter int

	AddSource bool
}
