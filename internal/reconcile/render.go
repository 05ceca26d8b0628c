package reconcile

import (
	"fmt"
	"io"
)

// WriteText renders a report for a terminal.
func WriteText(w io.Writer, r *Report) error {
	p := &printer{w: w}
	p.printf("Reconciliation report %s\n\n", r.Date.UTC().Format("2006-01-02 15:04:05 MST"))

	if r.Clean() {
		p.printf("No drift: all %d accounts match their history\n", r.Summary.Accounts)
	} else {
		p.printf("%-16s %12s %12s %12s\n", "ACCOUNT", "STORED", "EXPECTED", "DIFFERENCE")
		for _, d := range r.Drifts {
			p.printf("%-16s %12s %12s %12s\n", d.Account, d.Stored, d.Expected, d.Difference())
		}
		p.printf("\n%d of %d accounts drifted\n", len(r.Drifts), r.Summary.Accounts)
	}

	s := r.Summary
	p.printf("\n")
	p.printf("%-16s %12d\n", "Accounts", s.Accounts)
	p.printf("%-16s %12s\n", "Balances", s.Balances)
	p.printf("%-16s %12s\n", "Donations", s.Donations)
	p.printf("%-16s %12s\n", "Expected cash", s.ExpectedCash())
	p.printf("%-16s %12s\n", "Deposits", s.Deposits)
	p.printf("%-16s %12s\n", "Retained", s.Retained)
	return p.err
}

// printer keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
