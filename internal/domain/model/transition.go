package model

// ロールごとの遷移表（現在のstatus -> 許可される次のstatus）
var orderTransitions = map[Role]map[OrderStatus][]OrderStatus{
	RoleCustomer: {
		OrderStatusPending:   {OrderStatusCancelled},
		OrderStatusConfirmed: {OrderStatusCancelled},
	},
	RoleAdmin: {
		OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
		OrderStatusConfirmed: {OrderStatusDelivered},
	},
}

// CanTransition は role が from から to へ動かせるか。
// from == to は呼び出し側で no-op として扱う。
func CanTransition(role Role, from, to OrderStatus) bool {
	for _, next := range orderTransitions[role][from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanRequest は role がそもそも to を要求できるか（同じstatusの再送判定用）
func CanRequest(role Role, to OrderStatus) bool {
	for _, nexts := range orderTransitions[role] {
		for _, next := range nexts {
			if next == to {
				return true
			}
		}
	}
	return false
}
