package display

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"

	"netrate/internal/metrics"
)

// FormatLine renders one sample as
//
//	    eth0: v   1.0 KiB/s ^       0 B/s
func FormatLine(iface string, s metrics.RateSample) string {
	return fmt.Sprintf("%8s: v %9s/s ^ %9s/s",
		iface, humanize.IBytes(s.RxBytesPerSec), humanize.IBytes(s.TxBytesPerSec))
}

type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) Print(iface string, s metrics.RateSample) error {
	_, err := fmt.Fprintln(p.w, FormatLine(iface, s))
	return err
}

// PrintAll prints every sample in rates, ordered by interface name.
func (p *Printer) PrintAll(rates map[string]metrics.RateSample) error {
	names := make([]string, 0, len(rates))
	for name := range rates {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := p.Print(name, rates[name]); err != nil {
			return err
		}
	}
	return nil
}
