package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pricescout/backend/internal/domain"
)

// extractStructuredData parses embedded JSON-LD product markup. It is the
// highest-priority strategy: schema.org Product objects carry name, price,
// currency and availability directly.
func extractStructuredData(doc *goquery.Document, _ domain.SourceDescriptor) *candidate {
	var found *candidate

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data interface{}
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true // malformed block, keep scanning
		}

		for _, node := range flattenJSONLD(data) {
			if cand := productCandidate(node); cand != nil {
				found = cand
				return false
			}
		}
		return true
	})

	return found
}

// flattenJSONLD expands top-level arrays and @graph containers into the
// list of object nodes to inspect
func flattenJSONLD(data interface{}) []map[string]interface{} {
	var nodes []map[string]interface{}

	switch v := data.(type) {
	case []interface{}:
		for _, item := range v {
			nodes = append(nodes, flattenJSONLD(item)...)
		}
	case map[string]interface{}:
		nodes = append(nodes, v)
		if graph, ok := v["@graph"].([]interface{}); ok {
			for _, item := range graph {
				nodes = append(nodes, flattenJSONLD(item)...)
			}
		}
	}

	return nodes
}

// productCandidate converts a schema.org Product node into a candidate,
// or nil when the node is not a product or has no usable offer
func productCandidate(node map[string]interface{}) *candidate {
	if !isProductType(node["@type"]) {
		return nil
	}

	name, _ := node["name"].(string)
	name = strings.TrimSpace(name)

	offer := firstOffer(node["offers"])
	if offer == nil {
		return nil
	}

	priceValue := offer["price"]
	if priceValue == nil {
		priceValue = offer["lowPrice"]
	}

	price, ok := numericValue(priceValue)
	if !ok {
		return nil
	}

	currency, _ := offer["priceCurrency"].(string)
	availability, _ := offer["availability"].(string)
	link, _ := node["url"].(string)

	return &candidate{
		name:         name,
		price:        price,
		currency:     currency,
		availability: parseAvailability(availability),
		link:         strings.TrimSpace(link),
	}
}

// isProductType handles @type as a string or a list of strings
func isProductType(t interface{}) bool {
	switch v := t.(type) {
	case string:
		return v == "Product"
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "Product" {
				return true
			}
		}
	}
	return false
}

// firstOffer returns the first offer object, whether offers is an object,
// an array, or an AggregateOffer
func firstOffer(offers interface{}) map[string]interface{} {
	switch v := offers.(type) {
	case map[string]interface{}:
		return v
	case []interface{}:
		for _, item := range v {
			if offer, ok := item.(map[string]interface{}); ok {
				return offer
			}
		}
	}
	return nil
}

// numericValue parses a JSON price that may arrive as a number or a string
func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if n > 0 {
			return n, true
		}
	case string:
		return parseAmount(n)
	}
	return 0, false
}
