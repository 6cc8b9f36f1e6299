// Package catalog loads vendor extraction results and indexes them into the
// vector store, one embedded document per vendor.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vendormatch/recommender/internal/structured"
	"github.com/vendormatch/recommender/internal/vectorstore"
)

// minContentLength is the minimum amount of descriptive text a vendor must
// carry to be worth indexing. Boilerplate (record index, extraction notes and
// status) does not count toward it.
const minContentLength = 20

// ExtractedVendor is the structured profile produced by the upstream
// extraction job. Every field is optional; Employees and Confidence tolerate
// numeric input.
type ExtractedVendor struct {
	CompanyName    string                `json:"company_name"`
	TradingName    string                `json:"trading_name"`
	Services       string                `json:"services"`
	Products       string                `json:"products"`
	Industry       string                `json:"industry"`
	About          string                `json:"about"`
	SICCodes       string                `json:"sic_codes"`
	City           string                `json:"city"`
	Country        string                `json:"country"`
	Address        string                `json:"address"`
	Phone          string                `json:"phone"`
	Email          string                `json:"email"`
	Website        string                `json:"website"`
	Employees      structured.FlexString `json:"employees"`
	Certifications string                `json:"certifications"`
	Confidence     structured.FlexString `json:"confidence"`
}

// Vendor is one record from the raw extraction results file. Status "success"
// means the extracted profile is complete; anything else falls back to the raw
// source fields.
type Vendor struct {
	Index        *int             `json:"index"`
	Name         string           `json:"vendor"`
	Status       string           `json:"status"`
	CompanyName  string           `json:"company_name"`
	KnownAddress string           `json:"known_address"`
	Extracted    *ExtractedVendor `json:"extracted"`
}

// ID returns the vendor's persisted document identity: the record index when
// present, so ids are stable across re-runs of the extraction job.
func (v *Vendor) ID(position int) string {
	if v.Index != nil {
		return strconv.Itoa(*v.Index)
	}
	return strconv.Itoa(position)
}

// Load reads the raw vendor extraction results file.
func Load(path string) ([]Vendor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vendor data: %w", err)
	}

	var vendors []Vendor
	if err := json.Unmarshal(data, &vendors); err != nil {
		return nil, fmt.Errorf("decoding vendor data: %w", err)
	}

	return vendors, nil
}

// CombineText flattens a vendor into a single searchable string for
// embedding. Service-related fields lead because they carry the strongest
// matching signal; vendors whose extraction failed fall back to the raw
// source fields with a note.
func CombineText(v Vendor) string {
	extracted := v.Extracted
	if extracted == nil {
		extracted = &ExtractedVendor{}
	}
	isSuccess := v.Status == "success"

	var parts []string
	add := func(label, value string) {
		if value != "" {
			parts = append(parts, label+": "+value)
		}
	}

	if v.Index != nil {
		add("Record index", strconv.Itoa(*v.Index))
	}

	companyName := extracted.CompanyName
	if companyName == "" {
		companyName = v.CompanyName
	}
	add("Company", companyName)
	add("Also known as", extracted.TradingName)
	if v.Name != "" && v.Name != companyName {
		add("Vendor (source)", v.Name)
	}

	if isSuccess {
		add("Services", extracted.Services)
		add("Products", extracted.Products)
		add("Industry", extracted.Industry)
		add("About", extracted.About)
		add("SIC Codes", extracted.SICCodes)

		if extracted.City != "" || extracted.Country != "" {
			location := extracted.City
			if location != "" && extracted.Country != "" {
				location += ", "
			}
			location += extracted.Country
			add("Location", location)
		}

		add("Certifications", extracted.Certifications)
	} else {
		parts = append(parts, "Note: Limited data available (extraction incomplete)")
	}

	address := extracted.Address
	if address == "" {
		address = v.KnownAddress
	}
	add("Address", address)
	add("Phone", extracted.Phone)
	add("Email", extracted.Email)
	add("Website", extracted.Website)
	add("Employees", extracted.Employees.String())
	add("Extraction confidence", extracted.Confidence.String())
	add("Extraction status", v.Status)

	return strings.Join(parts, "\n")
}

// Indexable reports whether the vendor carries enough searchable signal to be
// worth embedding.
func Indexable(v Vendor) bool {
	extracted := v.Extracted
	if extracted == nil {
		extracted = &ExtractedVendor{}
	}

	content := 0
	for _, field := range []string{
		extracted.CompanyName, v.CompanyName, v.Name,
		extracted.TradingName, extracted.Services, extracted.Products,
		extracted.Industry, extracted.About, extracted.City,
		extracted.Address, v.KnownAddress, extracted.Certifications,
	} {
		content += len(field)
	}

	return content >= minContentLength
}

// Document converts a vendor to an unembedded store document. The metadata
// mapping carries the display fields the pipeline reattaches at retrieval
// time; empty values are dropped by the store.
func Document(v Vendor, position int) vectorstore.Document {
	extracted := v.Extracted
	if extracted == nil {
		extracted = &ExtractedVendor{}
	}

	companyName := extracted.CompanyName
	if companyName == "" {
		companyName = v.CompanyName
	}
	address := extracted.Address
	if address == "" {
		address = v.KnownAddress
	}

	return vectorstore.Document{
		ID:   v.ID(position),
		Text: CombineText(v),
		Metadata: map[string]string{
			"vendor":            v.Name,
			"company_name":      companyName,
			"trading_name":      extracted.TradingName,
			"services":          extracted.Services,
			"products":          extracted.Products,
			"industry":          extracted.Industry,
			"about":             extracted.About,
			"city":              extracted.City,
			"country":           extracted.Country,
			"address":           address,
			"phone":             extracted.Phone,
			"email":             extracted.Email,
			"website":           extracted.Website,
			"employees":         extracted.Employees.String(),
			"certifications":    extracted.Certifications,
			"confidence":        extracted.Confidence.String(),
			"extraction_status": v.Status,
		},
	}
}
