package edr

// Pagination is the cursor block returned with every listing.
type Pagination struct {
	TotalItems int    `json:"totalItems"`
	NextCursor string `json:"nextCursor"`
}

// Site is a console site.
type Site struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
}

// SitesResponse is the body of GET /sites.
type SitesResponse struct {
	Data struct {
		Sites []Site `json:"sites"`
	} `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Agent is an installed endpoint-protection agent.
type Agent struct {
	ID               string `json:"id"`
	ComputerName     string `json:"computerName"`
	SiteID           string `json:"siteId"`
	IsDecommissioned bool   `json:"isDecommissioned"`
}

// AgentsResponse is the body of GET /agents.
type AgentsResponse struct {
	Data       []Agent    `json:"data"`
	Pagination Pagination `json:"pagination"`
}
