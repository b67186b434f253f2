package rpc

import "github.com/zuccha/dnd-portal-sub002/pkg/resource"

// Operations shared by every kind.
const (
	FetchResourceOptions = "fetch_resource_options"
	DeleteResources      = "delete_resources"
)

// FetchOp returns the fetch-by-id operation of a kind.
func FetchOp(kind resource.Kind) string { return "fetch_" + string(kind) }

// FetchManyOp returns the list operation of a kind, named after its plural.
func FetchManyOp(plural string) string { return "fetch_" + plural }

func CreateOp(kind resource.Kind) string { return "create_" + string(kind) }

func UpdateOp(kind resource.Kind) string { return "update_" + string(kind) }

type FetchParams struct {
	ID string `json:"p_id"`
}

type FetchManyParams struct {
	CampaignID string                 `json:"p_campaign_id"`
	Langs      []string               `json:"p_langs"`
	Filters    map[string]interface{} `json:"p_filters"`
	OrderBy    string                 `json:"p_order_by"`
	OrderDir   resource.Direction     `json:"p_order_dir"`
}

type FetchOptionsParams struct {
	CampaignID string          `json:"p_campaign_id"`
	Kinds      []resource.Kind `json:"p_resource_kinds"`
	Langs      []string        `json:"p_langs"`
}

type CreateParams struct {
	CampaignID  string          `json:"p_campaign_id"`
	Lang        string          `json:"p_lang"`
	Resource    resource.Fields `json:"p_resource"`
	Translation resource.Fields `json:"p_translation"`
}

type UpdateParams struct {
	ID          string          `json:"p_id"`
	Lang        string          `json:"p_lang"`
	Resource    resource.Fields `json:"p_resource"`
	Translation resource.Fields `json:"p_translation"`
}

type DeleteParams struct {
	IDs []string `json:"p_ids"`
}
