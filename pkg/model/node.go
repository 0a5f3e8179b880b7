package model

import (
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Node is a versioned, DOI mintable asset. Each version owns its own
// content blob.
type Node struct {
	Asset
	Version     int           `gorm:"column:version;default:1" json:"version"`
	Projects    []Project     `gorm:"many2many:nodes_projects;" json:"-"`
	Versions    []NodeVersion `gorm:"foreignKey:NodeID" json:"-"`
	ContentBlob *ContentBlob  `gorm:"-" json:"-"`

	// VirtualLiver relaxes the project requirement
	VirtualLiver bool `gorm:"-" json:"-"`
}

func (Node) TableName() string { return "nodes" }
func (*Node) ItemType() string { return "Node" }

// UserCreatable is true: any registered user may create nodes
func (*Node) UserCreatable() bool { return true }

// UseMimeTypeForAvatar makes the node's icon follow its blob's content type
func (*Node) UseMimeTypeForAvatar() bool { return true }

func (n *Node) Validate() error {
	errs := n.validate()
	if len(n.Projects) == 0 && !n.VirtualLiver {
		errs.Add("projects", "Projects can't be blank")
	}
	return errs.Err()
}

func (n *Node) BeforeCreate(tx *gorm.DB) error {
	n.ensureUUID()
	return n.Validate()
}

// IsGithubCWL reports whether the node's content points at a CWL file on GitHub
func (n *Node) IsGithubCWL() bool {
	if n.ContentBlob == nil || n.ContentBlob.URL == nil {
		return false
	}
	url := *n.ContentBlob.URL
	return strings.Contains(url, "github.com") && strings.HasSuffix(url, "cwl")
}

// LatestVersion returns the highest numbered version, if loaded
func (n *Node) LatestVersion() *NodeVersion {
	var latest *NodeVersion
	for i := range n.Versions {
		if latest == nil || n.Versions[i].Version > latest.Version {
			latest = &n.Versions[i]
		}
	}
	return latest
}

// FindVersion returns the given version, if loaded
func (n *Node) FindVersion(version int) *NodeVersion {
	for i := range n.Versions {
		if n.Versions[i].Version == version {
			return &n.Versions[i]
		}
	}
	return nil
}

// DOIs lists the DOIs minted for any version, newest version first
func (n *Node) DOIs() []string {
	versions := make([]NodeVersion, len(n.Versions))
	copy(versions, n.Versions)
	sort.Slice(versions, func(i, j int) bool { return versions[i].Version > versions[j].Version })
	var dois []string
	for _, v := range versions {
		if v.DOI != nil && *v.DOI != "" {
			dois = append(dois, *v.DOI)
		}
	}
	return dois
}

// NodeVersion is an immutable snapshot of a node
type NodeVersion struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	NodeID           uint      `gorm:"column:node_id;not null" json:"node_id"`
	Version          int       `gorm:"column:version;not null" json:"version"`
	Title            string    `gorm:"column:title" json:"title"`
	Description      string    `gorm:"column:description" json:"description"`
	RevisionComments string    `gorm:"column:revision_comments" json:"revision_comments"`
	DOI              *string   `gorm:"column:doi" json:"doi"`
	ContributorID    *uint     `gorm:"column:contributor_id" json:"contributor_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (NodeVersion) TableName() string {
	return "node_versions"
}

// CanMintDOI is true until a DOI has been recorded for the version
func (v *NodeVersion) CanMintDOI() bool {
	return v.DOI == nil || *v.DOI == ""
}

// ContentBlob describes a stored file. Versioned assets key blobs by
// (asset type, asset id, asset version).
type ContentBlob struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	AssetType        string    `gorm:"column:asset_type;not null" json:"asset_type"`
	AssetID          uint      `gorm:"column:asset_id;not null" json:"asset_id"`
	AssetVersion     int       `gorm:"column:asset_version" json:"asset_version"`
	UUID             string    `gorm:"column:uuid;not null" json:"uuid"`
	StorageKey       string    `gorm:"column:storage_key" json:"-"`
	OriginalFilename string    `gorm:"column:original_filename" json:"original_filename"`
	ContentType      string    `gorm:"column:content_type" json:"content_type"`
	FileSize         int64     `gorm:"column:file_size" json:"file_size"`
	MD5              string    `gorm:"column:md5sum" json:"md5sum"`
	URL              *string   `gorm:"column:url" json:"url"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (ContentBlob) TableName() string {
	return "content_blobs"
}

// IsRemote is true for blobs that only reference an external URL
func (b *ContentBlob) IsRemote() bool {
	return b.StorageKey == "" && b.URL != nil
}
