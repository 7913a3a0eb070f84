package transfer

import "io"

// ProgressFunc receives cumulative bytes sent out of total.
type ProgressFunc func(sent, total int64)

// progressReader counts bytes as the HTTP transport pulls the request body.
type progressReader struct {
	io.Reader
	io.Closer
	sent     int64
	total    int64
	progress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.Reader.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.progress != nil {
			p.progress(p.sent, p.total)
		}
	}
	return n, err
}

// Percent converts a byte count into a percentage clamped to [0,100].
func Percent(sent, total int64) float64 {
	if total <= 0 || sent <= 0 {
		return 0
	}
	if sent >= total {
		return 100
	}
	return float64(sent) / float64(total) * 100
}
