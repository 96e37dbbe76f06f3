package cmd

import (
	"context"
)

func (r *Router) handleStats(ctx context.Context, args []string) error {
	st := r.Service.Stats()

	names := []string{"cycles", "notifications", "dispatched",
		"updated", "added", "renamed", "deleted", "batch",
		"errors", "watches", "policy"}
	values := map[string]interface{}{
		"cycles":        st.Cycles,
		"notifications": st.Notifications,
		"dispatched":    st.Dispatched(),
		"errors":        st.Errors,
		"watches":       st.Watches,
		"policy":        st.Policy.String(),
	}
	for _, name := range []string{"updated", "added", "renamed", "deleted", "batch"} {
		values[name] = st.Events[name]
	}

	if q := r.Service.Queue(); q != nil {
		n, err := q.Len(ctx)
		if err != nil {
			return err
		}
		names = append(names, "queued")
		values["queued"] = n
	}

	r.Formatter.PrintFields(names, values)
	return nil
}
