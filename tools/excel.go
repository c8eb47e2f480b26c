package tools

import (
	"bytes"
	"fmt"
	"reflect"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

type excelColumn struct {
	index  []int
	header string
}

// excelColumns 按 excel 标签收集结构体的导出列，支持匿名嵌入结构体
// 标签为 "-" 的字段跳过，未打标签的字段使用字段名
func excelColumns(t reflect.Type) []excelColumn {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	var cols []excelColumn
	var collect func(t reflect.Type, parent []int)
	collect = func(t reflect.Type, parent []int) {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if sf.PkgPath != "" {
				continue
			}
			idx := append(append([]int(nil), parent...), i)
			if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
				collect(sf.Type, idx)
				continue
			}
			tag := sf.Tag.Get("excel")
			if tag == "-" {
				continue
			}
			if tag == "" {
				tag = sf.Name
			}
			cols = append(cols, excelColumn{index: idx, header: tag})
		}
	}
	collect(t, nil)
	return cols
}

// ExcelHeaders 返回列标题，CSV 导出复用
func ExcelHeaders(t reflect.Type) []string {
	cols := excelColumns(t)
	headers := make([]string, len(cols))
	for i, col := range cols {
		headers[i] = col.header
	}
	return headers
}

// ExcelRow 把一行结构体转换为单元格值
func ExcelRow(elem reflect.Value, t reflect.Type) []any {
	cols := excelColumns(t)
	row := make([]any, len(cols))
	for i, col := range cols {
		row[i] = cellValue(elem.FieldByIndex(col.index))
	}
	return row
}

func cellValue(fv reflect.Value) any {
	if fv.Kind() == reflect.Ptr {
		if fv.IsNil() {
			return ""
		}
		fv = fv.Elem()
	}
	switch v := fv.Interface().(type) {
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(time.DateTime)
	case fmt.Stringer:
		return v.String()
	default:
		return v
	}
}

// ExportToExcel 将结构体切片写入指定 sheet，第一行为表头
func ExportToExcel(f *excelize.File, sheet string, data any) error {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Slice {
		return fmt.Errorf("data %T 不是切片", data)
	}
	elemType := v.Type().Elem()
	if elemType.Kind() == reflect.Ptr {
		elemType = elemType.Elem()
	}
	if elemType.Kind() != reflect.Struct {
		return fmt.Errorf("data %T 不是结构体切片", data)
	}

	if sheet == "" {
		sheet = "Sheet1"
	}
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}

	headers := ExcelHeaders(elemType)
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)*2 + 2
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	line := 2
	for i := 0; i < v.Len(); i++ {
		elem := v.Index(i)
		if elem.Kind() == reflect.Ptr {
			if elem.IsNil() {
				continue
			}
			elem = elem.Elem()
		}
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return err
		}
		row := ExcelRow(elem, elemType)
		for j, value := range row {
			if n := utf8.RuneCountInString(fmt.Sprint(value)) + 2; n > widths[j] {
				widths[j] = n
			}
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
		line++
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, float64(min(w, 60))); err != nil {
			return err
		}
	}
	return nil
}

// ExcelBytes 生成只包含一个 sheet 的 xlsx 文件内容
func ExcelBytes(sheet string, data any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "" && sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return nil, err
		}
	}
	if err := ExportToExcel(f, sheet, data); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
