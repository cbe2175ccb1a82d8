// Package schema defines the canonical asset record schema shared by the
// import pipeline and the manual-entry flow.
package schema

// Canonical field keys for asset attributes. Spreadsheet columns are
// reconciled to these keys before validation and submission; the asset
// store's creation endpoint accepts one multipart part per key.
const (
	FieldAssetName       = "assetName"
	FieldAssetType       = "assetType"
	FieldSerialNumber    = "serialNumber"
	FieldDescription     = "description"
	FieldPurchaseDate    = "purchaseDate"
	FieldPurchasePrice   = "purchasePrice"
	FieldMarketValue     = "marketValue"
	FieldManufacturer    = "manufacturer"
	FieldModelNumber     = "modelNumber"
	FieldLocation        = "location"
	FieldStatus          = "status"
	FieldBarcode         = "barcode"
	FieldInstitutionName = "institutionName"
	FieldDepartment      = "department"
	FieldFunctionalArea  = "functionalArea"
	FieldLogo            = "logo"
)

// RequiredFields lists the attributes that must be non-empty before a record
// may be submitted. Records missing any of these are rejected locally rather
// than letting the asset store be the only validator.
var RequiredFields = []string{
	FieldAssetName,
	FieldAssetType,
	FieldSerialNumber,
	FieldDescription,
	FieldPurchaseDate,
	FieldPurchasePrice,
	FieldMarketValue,
	FieldManufacturer,
	FieldModelNumber,
	FieldLocation,
	FieldInstitutionName,
	FieldDepartment,
	FieldFunctionalArea,
}

// HeaderMapping translates spreadsheet column headers, exactly as authored,
// to canonical field keys. Headers not present here are kept verbatim as
// field keys so ad-hoc columns survive the import unchanged.
var HeaderMapping = map[string]string{
	"NAME":                     FieldAssetName,
	"TYPE":                     FieldAssetType,
	"SERIAL NUMBER":            FieldSerialNumber,
	"DESCRIPTION":              FieldDescription,
	"PRICE":                    FieldPurchasePrice,
	"MARKET VALUE":             FieldMarketValue,
	"MANUFACTURER":             FieldManufacturer,
	"MODEL NUMBER":             FieldModelNumber,
	"LOCATION":                 FieldLocation,
	"STATUS":                   FieldStatus,
	"BARCODE":                  FieldBarcode,
	"INSTITUTION":              FieldInstitutionName,
	"DEPARTMENT":               FieldDepartment,
	"FUNCTIONAL AREA":          FieldFunctionalArea,
	"PURCHASE DATE":            FieldPurchaseDate,
	"REG. NO":                  "vehicleregno",
	"SOURCE OF FUNDS":          "sourceoffunds",
	"ENGINE NO.":               "enginenumber",
	"CHASSIS NO":               "chassisnumber",
	"MAKE":                     "make",
	"PURCHASE YEAR":            "purchaseyear",
	"PV NUMBER":                "pvnumber",
	"ORIGINAL LOCATION":        "originallocation",
	"CURRENT LOCATION":         "currentlocation",
	"REPLACEMENT DATE":         "replacementdate",
	"AMOUNT":                   "amount",
	"DEPRECIATION RATE":        "depreciationrate",
	"ANNUAL DEPRECIATION":      "annualdepreciation",
	"ACCUMULATED DEPRECIATION": "accumulateddepreciation",
	"NETBOOK VALUE":            "netbookvalue",
	"DISPOSAL DATE":            "disposaldate",
	"RESPONSIBLE OFFICER":      "responsibleofficer",
	"CONDITION":                "assetcondition",
}

// DateFields are coerced to the canonical "2006-01-02 15:04:05" form when
// possible. Unparseable values pass through raw with a recorded warning.
var DateFields = map[string]bool{
	FieldPurchaseDate: true,
	"replacementdate": true,
	"disposaldate":    true,
}

// CurrencyFields are normalized to plain decimal text (currency symbols,
// thousands separators and accounting negatives stripped) when parseable.
var CurrencyFields = map[string]bool{
	FieldPurchasePrice:        true,
	FieldMarketValue:          true,
	"amount":                  true,
	"annualdepreciation":      true,
	"accumulateddepreciation": true,
	"netbookvalue":            true,
}

// Category is one entry of the asset store's category list, used only to
// populate the type selector. Any string is accepted as an assetType value;
// no cross-check is performed before submission.
type Category struct {
	ID           int    `json:"id"`
	CategoryName string `json:"category_name"`
}
