package controllers

import (
	"testing"

	"graduation-project-api/models"
	"graduation-project-api/services"
)

func TestCanGradeProject(t *testing.T) {
	supervisorID := 10
	evaluatorID := 20

	withEvaluator := &models.Project{SupervisorID: supervisorID, EvaluatorID: &evaluatorID}
	withoutEvaluator := &models.Project{SupervisorID: supervisorID}

	cases := []struct {
		name    string
		actor   services.Actor
		project *models.Project
		want    bool
	}{
		{"evaluator grades", services.Actor{EntityID: evaluatorID, Role: models.RoleProfessor}, withEvaluator, true},
		{"supervisor blocked once evaluator assigned", services.Actor{EntityID: supervisorID, Role: models.RoleProfessor}, withEvaluator, false},
		{"supervisor grades when no evaluator", services.Actor{EntityID: supervisorID, Role: models.RoleProfessor}, withoutEvaluator, true},
		{"unrelated professor blocked", services.Actor{EntityID: 99, Role: models.RoleProfessor}, withoutEvaluator, false},
		{"student blocked even as evaluator id", services.Actor{EntityID: evaluatorID, Role: models.RoleStudent}, withEvaluator, false},
		{"admin blocked", services.Actor{EntityID: evaluatorID, Role: models.RoleAdmin}, withEvaluator, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := canGradeProject(tc.actor, tc.project); got != tc.want {
				t.Errorf("canGradeProject = %v, want %v", got, tc.want)
			}
		})
	}
}
