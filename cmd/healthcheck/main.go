// Offline data-integrity checker. Run against the production database to
// surface problems that never fail a request: orphaned rows, exhausted
// licenses over quota, non-positive prices, duplicate reference numbers.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"planforge_backend/pkg/database"
)

type check struct {
	name  string
	query string
}

var checks = []check{
	{
		name: "order items without an order",
		query: `SELECT COUNT(*) FROM order_items oi
			LEFT JOIN orders o ON o.id = oi.order_id
			WHERE o.id IS NULL`,
	},
	{
		name: "order items pointing at no product",
		query: `SELECT COUNT(*) FROM order_items
			WHERE plan_id IS NULL AND gallery_image_id IS NULL`,
	},
	{
		name: "licenses for missing users",
		query: `SELECT COUNT(*) FROM licenses l
			LEFT JOIN users u ON u.id = l.user_id
			WHERE u.id IS NULL`,
	},
	{
		name: "licenses for missing plans",
		query: `SELECT COUNT(*) FROM licenses l
			JOIN plans p ON p.id = l.plan_id
			WHERE l.plan_id IS NOT NULL AND p.deleted_at IS NOT NULL`,
	},
	{
		name: "licenses over their download quota",
		query: `SELECT COUNT(*) FROM licenses
			WHERE max_downloads IS NOT NULL AND download_count > max_downloads`,
	},
	{
		name: "published plans with non-positive base price",
		query: `SELECT COUNT(*) FROM plans
			WHERE status = 'PUBLISHED' AND base_price <= 0`,
	},
	{
		name: "duplicate plan numbers",
		query: `SELECT COUNT(*) FROM (
			SELECT plan_number FROM plans GROUP BY plan_number HAVING COUNT(*) > 1
		) d`,
	},
	{
		name: "completed orders without licenses",
		query: `SELECT COUNT(*) FROM orders o
			WHERE o.status = 'COMPLETED'
			AND NOT EXISTS (SELECT 1 FROM licenses l WHERE l.order_id = o.id)`,
	},
	{
		name: "download logs for missing licenses",
		query: `SELECT COUNT(*) FROM download_logs dl
			LEFT JOIN licenses l ON l.id = dl.license_id
			WHERE l.id IS NULL`,
	},
}

func main() {
	godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	database.InitDB(dbURL)
	db := database.GetDB()

	problems := 0
	for _, chk := range checks {
		var count int64
		if err := db.Raw(chk.query).Scan(&count).Error; err != nil {
			fmt.Printf("ERROR  %-45s %v\n", chk.name, err)
			problems++
			continue
		}
		if count > 0 {
			fmt.Printf("FAIL   %-45s %d rows\n", chk.name, count)
			problems++
		} else {
			fmt.Printf("OK     %s\n", chk.name)
		}
	}

	if problems > 0 {
		fmt.Printf("\n%d check(s) failed\n", problems)
		os.Exit(1)
	}
	fmt.Println("\nAll checks passed")
}
