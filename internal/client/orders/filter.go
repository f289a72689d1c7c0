package orders

import "strings"

// Filter returns the orders whose code, client, company or address contain
// query (case-insensitive) and whose status equals status. An empty query or
// status matches everything. The input slice is not modified.
func Filter(orders []Order, query string, status Status) []Order {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if status != "" && o.Status != status {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(searchText(o)), q) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func searchText(o Order) string {
	return o.Code + " " + o.ClientName + " " + o.CompanyName + " " + o.Address
}
