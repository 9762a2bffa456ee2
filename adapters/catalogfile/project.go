// Package catalogfile - Project definition files
package catalogfile

import (
	"os"

	"github.com/shopspring/decimal"

	"fence-cost/core/types"
	"fence-cost/internal/errors"
)

// Project is a parsed project definition
type Project struct {
	// Name identifies the project
	Name string

	// BusinessUnit scopes labor rate lookups
	BusinessUnit string

	// Items are the project's fence runs
	Items []types.LineItemInput
}

type projectFileHCL struct {
	Projects []projectHCL `hcl:"project,block"`
}

type projectHCL struct {
	Name         string        `hcl:"name,label"`
	BusinessUnit string        `hcl:"business_unit"`
	LineItems    []lineItemHCL `hcl:"line_item,block"`
}

type lineItemHCL struct {
	ID          string            `hcl:"id,optional"`
	ProductType string            `hcl:"product_type"`
	Style       string            `hcl:"style,optional"`
	HeightFt    float64           `hcl:"height_ft"`
	PostType    string            `hcl:"post_type"`
	RailCount   int               `hcl:"rail_count,optional"`
	Options     []string          `hcl:"options,optional"`
	Materials   map[string]string `hcl:"materials,optional"`
	TotalFt     float64           `hcl:"total_ft"`
	BufferFt    float64           `hcl:"buffer_ft,optional"`
	Lines       int               `hcl:"lines,optional"`
	Gates       int               `hcl:"gates,optional"`
}

// LoadProject parses a project HCL file
func LoadProject(path string) (*Project, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Parsing("read project file", err)
	}
	return ParseProject(src, path)
}

// ParseProject parses project HCL source. A file holds exactly one
// project block.
func ParseProject(src []byte, filename string) (*Project, error) {
	var wire projectFileHCL
	if err := decodeHCL(src, filename, &wire); err != nil {
		return nil, err
	}
	if len(wire.Projects) != 1 {
		return nil, errors.Newf(errors.TypeInput, "%s must contain exactly one project block, found %d", filename, len(wire.Projects))
	}

	p := wire.Projects[0]
	project := &Project{
		Name:         p.Name,
		BusinessUnit: p.BusinessUnit,
	}

	for _, item := range p.LineItems {
		lines := item.Lines
		if lines == 0 {
			lines = 1
		}
		project.Items = append(project.Items, types.LineItemInput{
			ID: item.ID,
			Config: types.ProductConfiguration{
				ProductType:        item.ProductType,
				Style:              item.Style,
				HeightFt:           decimal.NewFromFloat(item.HeightFt),
				PostType:           types.PostType(item.PostType),
				RailCount:          item.RailCount,
				Options:            item.Options,
				ComponentMaterials: item.Materials,
			},
			TotalFt:  decimal.NewFromFloat(item.TotalFt),
			BufferFt: decimal.NewFromFloat(item.BufferFt),
			Lines:    lines,
			Gates:    item.Gates,
		})
	}

	return project, nil
}
