package utils

import "github.com/zeromicro/go-zero/core/netx"

// GetLocalIP 返回本机内网 IP，取不到时返回空串
func GetLocalIP() (string, bool) {
	ip := netx.InternalIp()
	return ip, ip != ""
}
