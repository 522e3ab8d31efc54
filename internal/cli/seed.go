package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sitecms/internal/db"
	"github.com/sitecms/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// SeedFile 是 seed.yaml 的结构。
type SeedFile struct {
	Pages           []seedPage           `yaml:"pages"`
	Branding        map[string]string    `yaml:"branding"`
	FooterLinks     []seedFooterLink     `yaml:"footer_links"`
	InvestmentAreas []seedInvestmentArea `yaml:"investment_areas"`
	Offices         []seedOffice         `yaml:"offices"`
}

type seedPage struct {
	Slug            string  `yaml:"slug"`
	Title           *string `yaml:"title"`
	MetaTitle       *string `yaml:"meta_title"`
	MetaDescription *string `yaml:"meta_description"`
	IsPublished     *bool   `yaml:"is_published"`
	SortOrder       *int    `yaml:"sort_order"`
}

type seedFooterLink struct {
	Section      *string `yaml:"section"`
	Label        string  `yaml:"label"`
	URL          *string `yaml:"url"`
	OpenInNewTab *bool   `yaml:"open_in_new_tab"`
	SortOrder    *int    `yaml:"sort_order"`
	IsActive     *bool   `yaml:"is_active"`
}

type seedInvestmentArea struct {
	Title       string  `yaml:"title"`
	Description *string `yaml:"description"`
	Icon        *string `yaml:"icon"`
	AreaType    *string `yaml:"area_type"`
	SortOrder   *int    `yaml:"sort_order"`
	IsActive    *bool   `yaml:"is_active"`
}

type seedOffice struct {
	Name           string  `yaml:"name"`
	City           *string `yaml:"city"`
	Country        *string `yaml:"country"`
	Address        *string `yaml:"address"`
	Phone          *string `yaml:"phone"`
	Email          *string `yaml:"email"`
	MapURL         *string `yaml:"map_url"`
	IsHeadquarters *bool   `yaml:"is_headquarters"`
	SortOrder      *int    `yaml:"sort_order"`
	IsActive       *bool   `yaml:"is_active"`
}

// SeedReport 统计每类记录新建与更新的数量。
type SeedReport struct {
	Created map[string]int
	Updated map[string]int
}

func (r *SeedReport) record(kind string, created bool) {
	if created {
		r.Created[kind]++
		return
	}
	r.Updated[kind]++
}

// LoadSeedFile 读取并解析 YAML 种子文件。
func LoadSeedFile(path string) (*SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file SeedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &file, nil
}

// Seed 幂等地写入种子数据：页面按 slug，设置按键，页脚按标签，投资领域按标题，办公地点按名称匹配。
func Seed(ctx context.Context, gdb *gorm.DB, file *SeedFile) (*SeedReport, error) {
	report := &SeedReport{Created: map[string]int{}, Updated: map[string]int{}}

	pages := service.NewPageService(gdb)
	for _, item := range file.Pages {
		created, err := seedOnePage(ctx, pages, item)
		if err != nil {
			return report, fmt.Errorf("page %q: %w", item.Slug, err)
		}
		report.record("pages", created)
	}

	if len(file.Branding) > 0 {
		if _, err := service.NewBrandingService(gdb).Update(ctx, file.Branding); err != nil {
			return report, fmt.Errorf("branding: %w", err)
		}
		report.Updated["branding"] += len(file.Branding)
	}

	footer := service.NewFooterService(gdb)
	for _, item := range file.FooterLinks {
		input := service.FooterLinkInput{
			Section:      item.Section,
			Label:        &item.Label,
			URL:          item.URL,
			OpenInNewTab: item.OpenInNewTab,
			SortOrder:    item.SortOrder,
			IsActive:     item.IsActive,
		}
		id, err := lookupID(ctx, gdb, &db.FooterLink{}, "label = ?", item.Label)
		if err != nil {
			return report, err
		}
		if id == 0 {
			_, err = footer.Create(ctx, input)
		} else {
			_, err = footer.Update(ctx, id, input)
		}
		if err != nil {
			return report, fmt.Errorf("footer link %q: %w", item.Label, err)
		}
		report.record("footer_links", id == 0)
	}

	areas := service.NewInvestmentService(gdb)
	for _, item := range file.InvestmentAreas {
		input := service.InvestmentAreaInput{
			Title:       &item.Title,
			Description: item.Description,
			Icon:        item.Icon,
			AreaType:    item.AreaType,
			SortOrder:   item.SortOrder,
			IsActive:    item.IsActive,
		}
		id, err := lookupID(ctx, gdb, &db.InvestmentArea{}, "title = ?", item.Title)
		if err != nil {
			return report, err
		}
		if id == 0 {
			_, err = areas.Create(ctx, input)
		} else {
			_, err = areas.Update(ctx, id, input)
		}
		if err != nil {
			return report, fmt.Errorf("investment area %q: %w", item.Title, err)
		}
		report.record("investment_areas", id == 0)
	}

	offices := service.NewOfficeService(gdb)
	for _, item := range file.Offices {
		input := service.OfficeInput{
			Name:           &item.Name,
			City:           item.City,
			Country:        item.Country,
			Address:        item.Address,
			Phone:          item.Phone,
			Email:          item.Email,
			MapURL:         item.MapURL,
			IsHeadquarters: item.IsHeadquarters,
			SortOrder:      item.SortOrder,
			IsActive:       item.IsActive,
		}
		id, err := lookupID(ctx, gdb, &db.OfficeLocation{}, "name = ?", item.Name)
		if err != nil {
			return report, err
		}
		if id == 0 {
			_, err = offices.Create(ctx, input)
		} else {
			_, err = offices.Update(ctx, id, input)
		}
		if err != nil {
			return report, fmt.Errorf("office %q: %w", item.Name, err)
		}
		report.record("offices", id == 0)
	}

	return report, nil
}

func seedOnePage(ctx context.Context, pages *service.PageService, item seedPage) (bool, error) {
	input := service.PageInput{
		Slug:            &item.Slug,
		Title:           item.Title,
		MetaTitle:       item.MetaTitle,
		MetaDescription: item.MetaDescription,
		IsPublished:     item.IsPublished,
		SortOrder:       item.SortOrder,
	}

	existing, err := pages.GetBySlug(ctx, service.Slugify(item.Slug), false)
	switch {
	case errors.Is(err, service.ErrPageNotFound):
		_, err = pages.Create(ctx, input)
		return true, err
	case err != nil:
		return false, err
	}

	input.Slug = nil
	_, err = pages.Update(ctx, existing.ID, input)
	return false, err
}

// lookupID 返回匹配记录的 ID，不存在时为 0。
func lookupID(ctx context.Context, gdb *gorm.DB, model interface{}, query string, args ...interface{}) (uint, error) {
	var ids []uint
	if err := gdb.WithContext(ctx).Model(model).Where(query, args...).Order("id asc").Limit(1).Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return ids[0], nil
}

func newSeedCommand(a *app) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert pages, branding, footer links, investment areas and offices from YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, err := LoadSeedFile(path)
			if err != nil {
				return err
			}
			if err := db.Migrate(a.gdb); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			report, err := Seed(cmd.Context(), a.gdb, file)
			if err != nil {
				return err
			}

			for _, kind := range []string{"pages", "branding", "footer_links", "investment_areas", "offices"} {
				created, updated := report.Created[kind], report.Updated[kind]
				if created == 0 && updated == 0 {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: 新建 %d, 更新 %d\n", kind, created, updated)
				a.logger.Info("seeded", zap.String("kind", kind), zap.Int("created", created), zap.Int("updated", updated))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "file", "f", "seed.yaml", "path to the YAML fixture")
	return cmd
}
