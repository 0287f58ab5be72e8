package framework

// Problem bundles an instance with the objective functions scoring it.
// Objectives are ordered [completion time, cost].
type Problem struct {
	Instance   *Instance
	Objectives []ObjectiveFunc
}

// Evaluate scores an assignment with the problem's two objectives
func (p *Problem) Evaluate(a Assignment) Fitness {
	return Fitness{
		Time: p.Objectives[0](a),
		Cost: p.Objectives[1](a),
	}
}
