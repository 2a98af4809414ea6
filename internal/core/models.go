package core

// Asset is a single downloadable file attached to a published release
type Asset struct {
	Name        string `json:"name"`
	DownloadURL string `json:"download_url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size,omitempty"`
}

// ScoredAsset pairs an asset with its platform-affinity score (0..3)
type ScoredAsset struct {
	Asset
	Score int `json:"score"`
}

// Repository is the search result the installer works from
type Repository struct {
	FullName    string `json:"full_name"`
	HTMLURL     string `json:"html_url"`
	ReleasesURL string `json:"releases_url"`
}

// Release is the most recent release of a repository
type Release struct {
	TagName string  `json:"tag_name"`
	Name    string  `json:"name,omitempty"`
	Assets  []Asset `json:"assets"`
}

// InstallResult describes what a successful pipeline run left behind
type InstallResult struct {
	Asset    ScoredAsset
	Path     string
	Replaced bool
}

// InstallOptions contains options for a single installation
type InstallOptions struct {
	Query     string // Search term sent to the repository search API
	Name      string // Executable name; defaults to Query
	DestDir   string // Destination directory; defaults to the user's executable dir
	AssumeYes bool   // Overwrite an existing executable without asking
	NoCache   bool   // Bypass the metadata cache
}

// InstallName returns the executable name to install under
func (o InstallOptions) InstallName() string {
	if o.Name != "" {
		return o.Name
	}
	return o.Query
}

// Exit codes
const (
	ExitSuccess       = 0
	ExitGeneral       = 1
	ExitInvalidArgs   = 2
	ExitInstallFailed = 3
	ExitPermission    = 6
	ExitNetwork       = 7
	ExitInterrupted   = 130
)
