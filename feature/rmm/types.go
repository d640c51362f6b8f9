package rmm

// PageDetails describes the position of a page in a paginated listing.
type PageDetails struct {
	Count       int    `json:"count"`
	TotalCount  int    `json:"totalCount"`
	PrevPageURL string `json:"prevPageUrl"`
	NextPageURL string `json:"nextPageUrl"`
}

// Site is an RMM site (one per client organization, possibly several).
type Site struct {
	UID  string `json:"uid"`
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SitesPage is one page of /api/v2/account/sites.
type SitesPage struct {
	PageDetails PageDetails `json:"pageDetails"`
	Sites       []Site      `json:"sites"`
}

// Device is an RMM-managed device. Hostname may be null.
type Device struct {
	UID      string  `json:"uid"`
	Hostname *string `json:"hostname"`
	SiteName string  `json:"siteName"`
	Deleted  bool    `json:"deleted"`
}

// DevicesPage is one page of /api/v2/site/{uid}/devices.
type DevicesPage struct {
	PageDetails PageDetails `json:"pageDetails"`
	Devices     []Device    `json:"devices"`
}
