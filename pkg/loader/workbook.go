package loader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"k8s.io/klog/v2"

	"github.com/cloudsched/mobat/pkg/multiobjective/framework"
)

// Sheet and column names of a scheduling workbook
const (
	TaskSheet      = "TaskDetails"
	NodeSheet      = "NodeDetails"
	ExecutionSheet = "ExecutionTable"
	CostSheet      = "CostTable"

	WorkloadColumn = "Number of instructions"
	MIPSColumn     = "CPU rate (MIPS)"
)

// WorkbookOptions controls how a workbook is turned into an instance
type WorkbookOptions struct {
	// CapacityWindow divides a machine's MIPS rate into its capacity
	CapacityWindow float64
	// TableHeaderRows is the number of leading rows of the execution and
	// cost sheets that hold no machine data
	TableHeaderRows int
	// TableLabelColumns is the number of leading label columns of those sheets
	TableLabelColumns int
}

// DefaultWorkbookOptions matches the layout of the reference task40/task120 workbooks
func DefaultWorkbookOptions() WorkbookOptions {
	return WorkbookOptions{
		CapacityWindow:    10,
		TableHeaderRows:   2,
		TableLabelColumns: 1,
	}
}

// LoadWorkbook reads an instance from an xlsx workbook. Task workloads come
// from the TaskDetails sheet, machine rates from NodeDetails; the execution
// time and cost tables have one row per machine and one column per task.
func LoadWorkbook(path string, opts WorkbookOptions) (*framework.Instance, error) {
	if !(opts.CapacityWindow > 0) {
		return nil, fmt.Errorf("capacity window must be > 0 (got %v)", opts.CapacityWindow)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			klog.ErrorS(err, "Failed to close workbook", "path", path)
		}
	}()

	names, workloads, err := readColumn(f, TaskSheet, WorkloadColumn)
	if err != nil {
		return nil, err
	}
	tasks := make([]framework.TaskInfo, len(workloads))
	for j, w := range workloads {
		tasks[j] = framework.TaskInfo{Idx: j, Name: nameOr(names[j], "task", j), Workload: w}
	}

	names, mips, err := readColumn(f, NodeSheet, MIPSColumn)
	if err != nil {
		return nil, err
	}
	machines := make([]framework.MachineInfo, len(mips))
	for i, rate := range mips {
		machines[i] = framework.MachineInfo{Idx: i, Name: nameOr(names[i], "vm", i), Capacity: rate / opts.CapacityWindow}
	}

	times, err := readTable(f, ExecutionSheet, opts, len(machines), len(tasks))
	if err != nil {
		return nil, err
	}
	costs, err := readTable(f, CostSheet, opts, len(machines), len(tasks))
	if err != nil {
		return nil, err
	}

	klog.V(2).InfoS("Loaded workbook", "path", path, "tasks", len(tasks), "machines", len(machines))
	return framework.NewInstance(tasks, machines, times, costs)
}

// readColumn returns the first column as names and the values of the column
// whose header starts with prefix, one entry per non-empty data row
func readColumn(f *excelize.File, sheet, prefix string) ([]string, []float64, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %s is empty", sheet)
	}

	col := -1
	for c, header := range rows[0] {
		if strings.HasPrefix(strings.TrimSpace(header), prefix) {
			col = c
			break
		}
	}
	if col < 0 {
		return nil, nil, fmt.Errorf("sheet %s has no column %q", sheet, prefix)
	}

	var names []string
	var values []float64
	for r, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		if col >= len(row) {
			return nil, nil, fmt.Errorf("sheet %s row %d: missing %q", sheet, r+2, prefix)
		}
		v, err := parseCell(row[col])
		if err != nil {
			return nil, nil, fmt.Errorf("sheet %s row %d: %w", sheet, r+2, err)
		}
		name := ""
		if col != 0 && len(row) > 0 {
			name = strings.TrimSpace(row[0])
		}
		names = append(names, name)
		values = append(values, v)
	}
	return names, values, nil
}

// readTable reads a machine x task block after the header rows and label columns
func readTable(f *excelize.File, sheet string, opts WorkbookOptions, machines, tasks int) (framework.Matrix, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", sheet, err)
	}

	var m framework.Matrix
	for r := opts.TableHeaderRows; r < len(rows); r++ {
		row := rows[r]
		if isBlank(row) {
			continue
		}
		if len(m) == machines {
			return nil, fmt.Errorf("sheet %s has more than %d machine rows", sheet, machines)
		}
		if len(row) < opts.TableLabelColumns+tasks {
			return nil, fmt.Errorf("sheet %s row %d: want %d task columns, got %d", sheet, r+1, tasks, len(row)-opts.TableLabelColumns)
		}
		values := make([]float64, tasks)
		for j := range values {
			v, err := parseCell(row[opts.TableLabelColumns+j])
			if err != nil {
				return nil, fmt.Errorf("sheet %s row %d: %w", sheet, r+1, err)
			}
			values[j] = v
		}
		m = append(m, values)
	}
	if len(m) != machines {
		return nil, fmt.Errorf("sheet %s: want %d machine rows, got %d", sheet, machines, len(m))
	}
	return m, nil
}

// WriteWorkbook saves an instance in the layout LoadWorkbook reads. Machine
// rates are written as capacity times the capacity window.
func WriteWorkbook(path string, inst *framework.Instance, opts WorkbookOptions) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			klog.ErrorS(err, "Failed to close workbook", "path", path)
		}
	}()

	for _, sheet := range []string{TaskSheet, NodeSheet, ExecutionSheet, CostSheet} {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	taskRows := [][]interface{}{{"Task", WorkloadColumn + " (10^9 instructions)"}}
	for _, t := range inst.Tasks {
		taskRows = append(taskRows, []interface{}{t.Name, t.Workload})
	}
	if err := writeRows(f, TaskSheet, taskRows); err != nil {
		return err
	}

	nodeRows := [][]interface{}{{"Node", MIPSColumn}}
	for _, m := range inst.Machines {
		nodeRows = append(nodeRows, []interface{}{m.Name, m.Capacity * opts.CapacityWindow})
	}
	if err := writeRows(f, NodeSheet, nodeRows); err != nil {
		return err
	}

	for sheet, m := range map[string]framework.Matrix{ExecutionSheet: inst.Times, CostSheet: inst.Costs} {
		if err := writeRows(f, sheet, tableRows(inst, m, opts)); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func tableRows(inst *framework.Instance, m framework.Matrix, opts WorkbookOptions) [][]interface{} {
	var rows [][]interface{}
	for h := 0; h < opts.TableHeaderRows; h++ {
		header := make([]interface{}, opts.TableLabelColumns, opts.TableLabelColumns+len(inst.Tasks))
		for c := range header {
			header[c] = ""
		}
		for _, t := range inst.Tasks {
			header = append(header, t.Name)
		}
		rows = append(rows, header)
	}
	for i, machine := range inst.Machines {
		row := make([]interface{}, opts.TableLabelColumns, opts.TableLabelColumns+len(inst.Tasks))
		for c := range row {
			row[c] = machine.Name
		}
		for _, v := range m[i] {
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return rows
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, r+1, err)
		}
	}
	return nil
}

func parseCell(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func nameOr(name, prefix string, idx int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("%s-%d", prefix, idx)
}
