package tools

// PanicOnErr 仅用于启动阶段的不可恢复错误
func PanicOnErr(err error) {
	if err != nil {
		panic(err)
	}
}
