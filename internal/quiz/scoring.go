package quiz

import "math"

const (
	minTarget = 1.0
	maxTarget = 5.0
)

// BasePoints 문제 배점
func BasePoints(q *Question) int {
	return 80 + q.Level()*30
}

// Earned 남은 시간 비율과 정답률을 반영한 획득 점수
func Earned(q *Question, ratio float64, secondsLeft, seconds int) int {
	speed := 0.55
	if seconds > 0 {
		speed += float64(max(0, secondsLeft)) / float64(seconds) * 0.45
	}
	return int(math.Round(float64(BasePoints(q)) * speed * ratio))
}

// NextTarget 답안마다 목표 난이도 이동 (정답 +0.35, 부분 +0.1, 그 외 -0.28)
func NextTarget(current, ratio float64) float64 {
	switch {
	case ratio >= 0.99:
		current += 0.35
	case ratio >= 0.6:
		current += 0.1
	default:
		current -= 0.28
	}
	return max(minTarget, min(maxTarget, current))
}

// BookTarget book 모드는 length/4 문제마다 1씩 올라간다
func BookTarget(start, answered, length int) float64 {
	segment := max(1, length/4)
	return float64(min(int(maxTarget), start+answered/segment))
}
