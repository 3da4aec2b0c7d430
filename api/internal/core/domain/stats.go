package domain

// DeveloperStats is the revenue/rating rollup over one developer's listings.
// A developer with no listings gets the zero value, not an error.
type DeveloperStats struct {
	DeveloperName string  `json:"developer_name"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalSales    int     `json:"total_sales"`
	AvgRating     float64 `json:"avg_rating"`
	AgentCount    int     `json:"agent_count"`
}
