package appointment

import (
	"github.com/m04kA/SMC-CheckoutService/pkg/txmanager"
)

// Переиспользуем интерфейсы из txmanager для работы с БД
type DBExecutor = txmanager.DBExecutor
type TxExecutor = txmanager.TxExecutor
