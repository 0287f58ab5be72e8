package framework

// Assignment is a machine x task matrix of {0,1}. A task column holds at most
// one 1; an all-zero column means the task could not be placed.
type Assignment [][]uint8

// NewAssignment returns an empty assignment of the given shape
func NewAssignment(machines, tasks int) Assignment {
	a := make(Assignment, machines)
	for i := range a {
		a[i] = make([]uint8, tasks)
	}
	return a
}

// NumMachines returns the number of machine rows
func (a Assignment) NumMachines() int {
	return len(a)
}

// NumTasks returns the number of task columns
func (a Assignment) NumTasks() int {
	if len(a) == 0 {
		return 0
	}
	return len(a[0])
}

// IsAssigned reports whether task j runs on machine i
func (a Assignment) IsAssigned(i, j int) bool {
	return a[i][j] == 1
}

// MachineOf returns the machine a task was placed on
func (a Assignment) MachineOf(j int) (int, bool) {
	for i := range a {
		if a[i][j] == 1 {
			return i, true
		}
	}
	return -1, false
}

// UnassignedTasks lists the tasks with an all-zero column
func (a Assignment) UnassignedTasks() []int {
	var out []int
	for j := 0; j < a.NumTasks(); j++ {
		if _, ok := a.MachineOf(j); !ok {
			out = append(out, j)
		}
	}
	return out
}

// AssignedCount returns the number of placed tasks
func (a Assignment) AssignedCount() int {
	n := 0
	for i := range a {
		for _, x := range a[i] {
			n += int(x)
		}
	}
	return n
}

// Clone returns a deep copy
func (a Assignment) Clone() Assignment {
	c := make(Assignment, len(a))
	for i := range a {
		c[i] = append([]uint8(nil), a[i]...)
	}
	return c
}

// Equal reports whether both assignments have the same shape and entries
func (a Assignment) Equal(b Assignment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

// Vector returns the assignment as a task -> machine vector, -1 for unassigned
func (a Assignment) Vector() []int {
	v := make([]int, a.NumTasks())
	for j := range v {
		v[j], _ = a.MachineOf(j)
	}
	return v
}
