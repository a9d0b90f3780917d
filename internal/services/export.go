package services

import (
	"bytes"
	"context"
	"strings"

	"sales-order-service/internal/domain"
)

const exportHeader = "订单编号,客户名称,客户地址,总金额,发货日期,状态,创建时间\n"

const exportTimeLayout = "2006/1/2 15:04:05"

// ExportCSV renders every order as CSV. Admin only.
func (s *OrderService) ExportCSV(ctx context.Context, actor domain.Actor) ([]byte, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	orders, err := s.orders.Load(ctx)
	if err != nil {
		return nil, err
	}
	return renderCSV(orders), nil
}

// renderCSV always quotes name and address, which encoding/csv only does
// when a field needs it.
func renderCSV(orders []domain.Order) []byte {
	var buf bytes.Buffer
	buf.WriteString(exportHeader)
	for _, o := range orders {
		row := []string{
			o.ID,
			quote(o.CustomerName),
			quote(o.CustomerAddress),
			o.TotalAmount.String(),
			o.DeliveryDate,
			o.Status.Label(),
			o.CreatedAt.Local().Format(exportTimeLayout),
		}
		buf.WriteString(strings.Join(row, ","))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
