package wizard

import (
	"fmt"
	"strconv"

	"github.com/awalterschulze/gographviz"
)

const graphName = "wizard"

func nodeName(s Step) string {
	return "step" + strconv.Itoa(int(s))
}

// StepGraph 以 Graphviz DOT 描述步骤流转：前进/后退边与各进入方式的起点
func StepGraph() (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName(graphName); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}
	if err := g.AddAttr(graphName, "rankdir", "LR"); err != nil {
		return "", err
	}

	for _, info := range Steps {
		attrs := map[string]string{
			"label": strconv.Quote(fmt.Sprintf("%d. %s", info.ID, info.Name)),
			"shape": "box",
		}
		if err := g.AddNode(graphName, nodeName(info.ID), attrs); err != nil {
			return "", err
		}
	}

	for _, info := range Steps {
		if info.ID == LastStep {
			break
		}
		next := info.ID + 1
		fwd := map[string]string{"label": strconv.Quote(gateLabel(next))}
		if err := g.AddEdge(nodeName(info.ID), nodeName(next), true, fwd); err != nil {
			return "", err
		}
		back := map[string]string{"style": "dashed", "label": `"back"`}
		if err := g.AddEdge(nodeName(next), nodeName(info.ID), true, back); err != nil {
			return "", err
		}
	}

	for _, mode := range EntryModes {
		entry := "entry_" + string(mode)
		attrs := map[string]string{
			"label": strconv.Quote(string(mode)),
			"shape": "ellipse",
			"style": "dotted",
		}
		if err := g.AddNode(graphName, entry, attrs); err != nil {
			return "", err
		}
		if err := g.AddEdge(entry, nodeName(StartStep(mode)), true, nil); err != nil {
			return "", err
		}
	}

	return g.String(), nil
}

// gateLabel 进入目标步骤所需的前置条件
func gateLabel(target Step) string {
	switch target {
	case StepAttributes:
		return "employees selected"
	case StepValues:
		return "fields selected"
	case StepReview:
		return "no blocking errors"
	case StepResults:
		return "execution finished"
	default:
		return "next"
	}
}
