package parser

import (
	"regexp"
	"strconv"

	"chatorder-service/internal/models"
)

// The bot understands exactly one phrase shape:
//
//	[ลูกค้า] สั่ง สินค้า จำนวน [หน่วย] [ส่งโดย วิธีจัดส่ง]
//
// Customer, item and unit are runs of Thai characters, quantity is a
// digit run, delivery method is any non-space run (couriers go by Latin
// names). The delivery clause is positional: it counts only directly
// after the quantity or unit. Because the keyword is itself a Thai run
// the unit group can swallow it when the unit is absent; Parse rewinds
// that capture before looking for the clause.
var (
	orderPattern    = regexp.MustCompile(`(?:([\x{0E00}-\x{0E7F}]+)\s+)?สั่ง\s+([\x{0E00}-\x{0E7F}]+)\s+([0-9]+)(?:\s+([\x{0E00}-\x{0E7F}]+))?`)
	deliveryPattern = regexp.MustCompile(`^\s*ส่งโดย\s+(\S+)`)
)

const deliveryKeyword = "ส่งโดย"

// Parse extracts an order intent from a raw utterance. The second return
// is false when the utterance does not follow the phrase shape; only the
// first occurrence of the pattern is considered.
func Parse(text string) (models.OrderIntent, bool) {
	m := orderPattern.FindStringSubmatchIndex(text)
	if m == nil {
		return models.OrderIntent{}, false
	}
	group := func(i int) string {
		if m[2*i] < 0 {
			return ""
		}
		return text[m[2*i]:m[2*i+1]]
	}

	qty, err := strconv.Atoi(group(3))
	if err != nil || qty <= 0 {
		return models.OrderIntent{}, false
	}

	unit := group(4)
	rest := text[m[1]:]
	if unit == deliveryKeyword {
		unit = ""
		rest = text[m[8]:]
	}

	delivery := models.DeliveryUnspecified
	if dm := deliveryPattern.FindStringSubmatch(rest); dm != nil {
		delivery = dm[1]
	}

	intent := models.OrderIntent{
		Customer:       group(1),
		Item:           group(2),
		Quantity:       qty,
		Unit:           unit,
		DeliveryMethod: delivery,
	}
	if intent.Customer == "" {
		intent.Customer = models.CustomerUnspecified
	}
	if intent.Unit == "" {
		intent.Unit = models.UnitPiece
	}
	return intent, true
}
