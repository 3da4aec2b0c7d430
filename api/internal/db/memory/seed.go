package memory

import "github.com/irgordon/bazaar/api/internal/core/domain"

// SeedDemo loads a small catalog so the memory driver is browsable out of the box.
func SeedDemo(db *DB) {
	inbox := db.PutListing(domain.Listing{
		Name: "Inbox Zero Agent", Slug: "inbox-zero-agent",
		Description: "Triages and drafts replies to your email.",
		Category:    domain.CategoryProductivity, Price: 29, OriginalPrice: 49,
		PriceType: domain.PriceLifetime, Icon: "📥", InstallType: domain.InstallAPI,
		DeveloperName: "Northwind Labs", Rating: 4.6, ReviewCount: 12, SalesCount: 140,
		Featured: true, Tags: []string{"email", "gmail"}, Screenshots: []string{},
	})
	social := db.PutListing(domain.Listing{
		Name: "Social Scheduler", Slug: "social-scheduler",
		Description: "Plans and posts content across networks.",
		Category:    domain.CategoryMarketing, Price: 9, OriginalPrice: 9,
		PriceType: domain.PriceMonthly, Icon: "📣", InstallType: domain.InstallZapier,
		DeveloperName: "Northwind Labs", Rating: 4.1, ReviewCount: 5, SalesCount: 75,
		Tags: []string{"social", "twitter"}, Screenshots: []string{},
	})
	ledger := db.PutListing(domain.Listing{
		Name: "Receipt Ledger", Slug: "receipt-ledger",
		Description: "Reads receipts from Telegram and books them.",
		Category:    domain.CategoryFinance, Price: 0, OriginalPrice: 0,
		PriceType: domain.PriceFree, Icon: "🧾", InstallType: domain.InstallTelegram,
		DeveloperName: "Abacus", Tags: []string{"accounting"}, Screenshots: []string{},
	})

	db.PutBundle(domain.Bundle{
		Name: "Solo Founder Kit", Slug: "solo-founder-kit",
		Description: "Email, social and bookkeeping on autopilot.",
		Price:       35, OriginalPrice: 58, Category: "productivity",
		AtlasHint: "Atlas can run all three from one prompt.", Featured: true,
	}, inbox.ID, social.ID, ledger.ID)
}
