package devapi

import (
	"context"
	"fmt"

	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/branches"
	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/categories"
	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/products"
	"github.com/odyssey-erp/odyssey-backoffice/internal/masterdata/shared"
	"github.com/odyssey-erp/odyssey-backoffice/internal/sales/customers"
)

type seedBranch struct {
	code, name, city, phone string
}

var seedBranches = []seedBranch{
	{"JKT", "Jakarta Pusat", "Jakarta", "021-5550101"},
	{"BDG", "Bandung", "Bandung", "022-5550202"},
	{"SBY", "Surabaya", "Surabaya", "031-5550303"},
}

var seedCategories = []struct{ code, name, desc string }{
	{"BEV", "Minuman", "Kopi, teh dan minuman dingin"},
	{"SNK", "Makanan Ringan", "Keripik dan kue kering"},
	{"ATK", "Alat Tulis", "Perlengkapan kantor"},
	{"HSH", "Rumah Tangga", "Sabun, deterjen dan pembersih"},
}

var seedProducts = []string{
	"Kopi Arabika", "Kopi Robusta", "Teh Melati", "Teh Hijau", "Susu UHT", "Air Mineral",
	"Keripik Singkong", "Kacang Mete", "Biskuit Kelapa", "Wafer Coklat", "Rempeyek",
	"Pulpen Hitam", "Buku Tulis", "Map Plastik", "Stapler", "Spidol",
	"Sabun Cuci", "Deterjen Bubuk", "Pembersih Lantai", "Sikat Gigi", "Tisu Wajah",
}

var seedCustomers = []string{
	"Toko Maju", "Toko Sejahtera", "Warung Bu Sri", "CV Sumber Rejeki", "PT Cahaya Abadi",
	"Toko Makmur", "Warung Pak Budi", "CV Berkah Jaya", "Koperasi Karyawan", "Minimarket Sentosa",
	"Toko Laris", "Apotek Sehat", "Kantin Sekolah", "Toko Mulia", "CV Tunas Baru",
}

// Seed fills an empty backend with demo data. It does nothing when any
// branch already exists.
func Seed(ctx context.Context, s Services) error {
	_, total, err := s.Branches.List(ctx, shared.ListFilters{Page: 1, Limit: 1})
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}

	for bi, sb := range seedBranches {
		branch, err := s.Branches.Create(ctx, branches.BranchForm{
			Code: sb.code, Name: sb.name, City: sb.city, Phone: sb.phone,
			Address: "Jl. Merdeka No. " + fmt.Sprint(bi+1), IsActive: true, IsDefault: bi == 0,
		})
		if err != nil {
			return fmt.Errorf("branch %s: %w", sb.code, err)
		}

		cats := make([]categories.Category, 0, len(seedCategories))
		for ci, sc := range seedCategories {
			c, err := s.Categories.Create(ctx, categories.CategoryForm{
				BranchID: branch.ID, Code: sc.code, Name: sc.name, Description: sc.desc, IsActive: ci != 3 || bi != 2,
			})
			if err != nil {
				return fmt.Errorf("category %s/%s: %w", sb.code, sc.code, err)
			}
			cats = append(cats, c)
		}

		for pi, name := range seedProducts {
			cat := cats[pi*len(cats)/len(seedProducts)]
			cost := float64(2000 + 750*pi + 500*bi)
			_, err := s.Products.Create(ctx, products.ProductForm{
				BranchID: branch.ID, CategoryID: cat.ID,
				Code:     fmt.Sprintf("%s-%03d", cat.Code, pi+1),
				Name:     name,
				Cost:     cost,
				Price:    cost * 1.35,
				Stock:    (pi * 7) % 40,
				IsActive: pi%6 != 5,
			})
			if err != nil {
				return fmt.Errorf("product %s/%s: %w", sb.code, name, err)
			}
		}

		for ci, name := range seedCustomers {
			typ := customers.TypeRetail
			if ci%3 == 0 {
				typ = customers.TypeWholesale
			}
			phone := fmt.Sprintf("08%02d-555-%04d", 11+bi, ci+1)
			_, err := s.Customers.Create(ctx, customers.CustomerForm{
				BranchID:         branch.ID,
				Name:             name + " " + sb.city,
				Type:             typ,
				Phone:            &phone,
				City:             &sb.city,
				CreditLimit:      float64((ci%5 + 1) * 2_500_000),
				PaymentTermsDays: (ci % 4) * 15,
				IsActive:         ci%7 != 6,
			})
			if err != nil {
				return fmt.Errorf("customer %s/%s: %w", sb.code, name, err)
			}
		}
	}
	return nil
}
