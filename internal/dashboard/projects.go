// Package dashboard holds the project-listing queries behind the
// dashboard API. Plain data fetching over PostgREST.
package dashboard

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sitesmith/builder-front/internal/log"
	"github.com/sitesmith/builder-front/internal/postgrest"
)

// Project is one row of the dashboard project list
type Project struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Domain      string   `json:"domain"`
	CreatedAt   string   `json:"createdAt"`
	IsPublished bool     `json:"isPublished"`
	Domains     []Domain `json:"domainsVirtual"`
}

// Domain is a custom domain attached to a project
type Domain struct {
	Domain   string `json:"domain"`
	Status   string `json:"status"`
	Verified bool   `json:"verified"`
}

// projectDomainRow joins ProjectDomain with its Domain record
type projectDomainRow struct {
	ProjectID string `json:"projectId"`
	TxtRecord string `json:"txtRecord"`
	Domain    struct {
		Domain    string `json:"domain"`
		Status    string `json:"status"`
		TxtRecord string `json:"txtRecord"`
	} `json:"Domain"`
}

// Projects lists dashboard projects
type Projects struct {
	client *postgrest.Client
}

// NewProjects creates the query layer over an existing client
func NewProjects(client *postgrest.Client) *Projects {
	return &Projects{client: client}
}

// List returns the owner's projects, newest first, with attached custom
// domains. A domain-lookup failure degrades to projects without domains
// rather than failing the listing.
func (p *Projects) List(ctx context.Context, userID string) ([]Project, error) {
	query := url.Values{}
	query.Set("userId", postgrest.Eq(userID))
	query.Set("isDeleted", "eq.false")
	query.Set("order", "createdAt.desc,id.desc")

	var projects []Project
	if err := p.client.Select(ctx, "DashboardProject", query, &projects); err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	if len(projects) == 0 {
		return []Project{}, nil
	}

	byProject, err := p.fetchDomains(ctx, projects)
	if err != nil {
		log.LogWarnWithFields("dashboard", "Failed to fetch project domains", map[string]any{
			"error": err.Error(),
		})
	}
	for i := range projects {
		if domains, ok := byProject[projects[i].ID]; ok {
			projects[i].Domains = domains
		} else {
			projects[i].Domains = []Domain{}
		}
	}
	return projects, nil
}

func (p *Projects) fetchDomains(ctx context.Context, projects []Project) (map[string][]Domain, error) {
	ids := ""
	for i, project := range projects {
		if i > 0 {
			ids += ","
		}
		ids += project.ID
	}

	query := url.Values{}
	query.Set("select", "projectId,txtRecord,Domain!inner(domain,status,txtRecord)")
	query.Set("projectId", "in.("+ids+")")

	var rows []projectDomainRow
	if err := p.client.Select(ctx, "ProjectDomain", query, &rows); err != nil {
		return nil, err
	}

	byProject := make(map[string][]Domain)
	for _, row := range rows {
		byProject[row.ProjectID] = append(byProject[row.ProjectID], Domain{
			Domain: row.Domain.Domain,
			Status: row.Domain.Status,
			// ownership is proven when the project's TXT record matches
			Verified: row.TxtRecord == row.Domain.TxtRecord,
		})
	}
	return byProject, nil
}
