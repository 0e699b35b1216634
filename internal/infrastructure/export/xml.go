package export

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/jhoicas/Inventario-console/internal/domain/entity"
)

// XML serializa los registros cargados como documento <inventario>: un
// <movimiento> por registro con los mismos 13 campos del export tabular, en
// el mismo orden y con el mismo marcador para ausentes. Determinista.
func XML(records []entity.Movement) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("inventario")
	root.CreateAttr("total", fmt.Sprintf("%d", len(records)))

	for _, m := range records {
		mv := root.CreateElement("movimiento")
		mv.CreateAttr("id", m.ID)
		row := Row(m)
		for i, col := range Columns {
			mv.CreateElement(col).SetText(row[i])
		}
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("export xml: %w", err)
	}
	return out, nil
}
