package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyRoot       = "build_root"
	KeyPath       = "path"
	KeyURL        = "url"
	KeySource     = "source_file"
	KeyLinkCount  = "link_count"
	KeyBroken     = "broken_count"
	KeyFileCount  = "file_count"
	KeyReason     = "reason"
	KeyStatus     = "status"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Root(dir string) slog.Attr       { return slog.String(KeyRoot, dir) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Source(p string) slog.Attr       { return slog.String(KeySource, p) }
func LinkCount(n int) slog.Attr       { return slog.Int(KeyLinkCount, n) }
func BrokenCount(n int) slog.Attr     { return slog.Int(KeyBroken, n) }
func FileCount(n int) slog.Attr       { return slog.Int(KeyFileCount, n) }
func Reason(r string) slog.Attr       { return slog.String(KeyReason, r) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
