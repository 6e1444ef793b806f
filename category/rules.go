package category

// categoryOrder fixes evaluation order so ties resolve deterministically.
var categoryOrder = []string{
	"Food",
	"Technology",
	"Office",
	"Transportation",
	"Services",
	"Taxes",
	"Health",
	"Home",
}

var categoryKeywords = map[string][]string{
	"Food": {
		"coffee", "tea", "lunch", "dinner", "breakfast", "catering",
		"restaurant", "pizza", "burger", "beverage", "snack", "grocery",
		"groceries", "cafe", "comida", "bebida",
	},
	"Technology": {
		"laptop", "notebook", "monitor", "keyboard", "mouse", "server",
		"software", "license", "licence", "subscription", "hosting",
		"cloud", "ssd", "ram", "cpu", "gpu", "router", "cable", "adapter",
		"printer", "toner", "cartridge", "phone", "smartphone", "tablet",
	},
	"Office": {
		"paper", "pen", "pencil", "stapler", "folder", "binder", "desk",
		"chair", "whiteboard", "marker", "envelope", "notepad", "ink",
		"oficina", "office supplies",
	},
	"Transportation": {
		"taxi", "uber", "fuel", "gasoline", "diesel", "parking", "toll",
		"train", "flight", "airfare", "bus", "mileage", "shipping",
		"freight", "courier", "transporte",
	},
	"Services": {
		"consulting", "consultancy", "maintenance", "repair", "cleaning",
		"installation", "support", "training", "audit", "legal",
		"accounting", "design", "development", "servicio",
	},
	"Taxes": {
		"vat", "gst", "iva", "duty", "levy", "withholding", "impuesto",
	},
	"Health": {
		"pharmacy", "medicine", "medical", "dental", "clinic", "vitamins",
		"salud", "farmacia",
	},
	"Home": {
		"furniture", "lamp", "curtain", "kitchen", "garden", "detergent",
		"hogar", "mueble",
	},
}

// vendorHints short-circuit classification for well-known vendors whose
// line items are often terse SKUs.
var vendorHints = map[string]string{
	"amazon web services": "Technology",
	"aws":                 "Technology",
	"microsoft":           "Technology",
	"google cloud":        "Technology",
	"github":              "Technology",
	"uber":                "Transportation",
	"lyft":                "Transportation",
	"shell":               "Transportation",
	"starbucks":           "Food",
	"mcdonald":            "Food",
	"staples":             "Office",
	"office depot":        "Office",
	"ikea":                "Home",
	"walgreens":           "Health",
}
